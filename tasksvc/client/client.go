// Package client builds load balanced task endpoints over the instances of
// the task API registered in consul.
package client

import (
	"io"
	"time"

	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/sd"
	consulsd "github.com/go-kit/kit/sd/consul"
	"github.com/go-kit/kit/sd/lb"
	"github.com/go-kit/log"
	"github.com/ichigozero/todokit/tasksvc/pkg/taskendpoint"
	"github.com/ichigozero/todokit/tasksvc/pkg/tasktransport"
)

// ServiceName is the name the API server registers under in consul.
const ServiceName = "taskapi"

func New(apiclient consulsd.Client, logger log.Logger, retryMax int, retryTimeout time.Duration) taskendpoint.Set {
	var (
		tags        = []string{}
		passingOnly = true
		instancer   = consulsd.NewInstancer(apiclient, logger, ServiceName, tags, passingOnly)
	)
	return NewWithInstancer(instancer, logger, retryMax, retryTimeout)
}

func NewWithInstancer(instancer sd.Instancer, logger log.Logger, retryMax int, retryTimeout time.Duration) taskendpoint.Set {
	endpoints := taskendpoint.Set{}
	{
		factory := factoryFor(func(s taskendpoint.Set) endpoint.Endpoint { return s.CreateTaskEndpoint })
		endpointer := sd.NewEndpointer(instancer, factory, logger)
		balancer := lb.NewRoundRobin(endpointer)
		retry := lb.Retry(retryMax, retryTimeout, balancer)
		endpoints.CreateTaskEndpoint = retry
	}
	{
		factory := factoryFor(func(s taskendpoint.Set) endpoint.Endpoint { return s.TasksEndpoint })
		endpointer := sd.NewEndpointer(instancer, factory, logger)
		balancer := lb.NewRoundRobin(endpointer)
		retry := lb.Retry(retryMax, retryTimeout, balancer)
		endpoints.TasksEndpoint = retry
	}
	{
		factory := factoryFor(func(s taskendpoint.Set) endpoint.Endpoint { return s.TaskEndpoint })
		endpointer := sd.NewEndpointer(instancer, factory, logger)
		balancer := lb.NewRoundRobin(endpointer)
		retry := lb.Retry(retryMax, retryTimeout, balancer)
		endpoints.TaskEndpoint = retry
	}
	{
		factory := factoryFor(func(s taskendpoint.Set) endpoint.Endpoint { return s.UpdateTaskEndpoint })
		endpointer := sd.NewEndpointer(instancer, factory, logger)
		balancer := lb.NewRoundRobin(endpointer)
		retry := lb.Retry(retryMax, retryTimeout, balancer)
		endpoints.UpdateTaskEndpoint = retry
	}
	{
		factory := factoryFor(func(s taskendpoint.Set) endpoint.Endpoint { return s.DeleteTaskEndpoint })
		endpointer := sd.NewEndpointer(instancer, factory, logger)
		balancer := lb.NewRoundRobin(endpointer)
		retry := lb.Retry(retryMax, retryTimeout, balancer)
		endpoints.DeleteTaskEndpoint = retry
	}
	return endpoints
}

func factoryFor(pick func(taskendpoint.Set) endpoint.Endpoint) sd.Factory {
	return func(instance string) (endpoint.Endpoint, io.Closer, error) {
		set, err := tasktransport.NewHTTPClient(instance + tasktransport.PathPrefix)
		if err != nil {
			return nil, nil, err
		}
		return pick(set), nil, nil
	}
}
