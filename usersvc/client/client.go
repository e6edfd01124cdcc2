package client

import (
	"io"
	"time"

	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/sd"
	consulsd "github.com/go-kit/kit/sd/consul"
	"github.com/go-kit/kit/sd/lb"
	"github.com/go-kit/log"
	"github.com/ichigozero/todokit/usersvc/pkg/userendpoint"
	"github.com/ichigozero/todokit/usersvc/pkg/usertransport"
)

// ServiceName is the name the API server registers under in consul.
const ServiceName = "taskapi"

func New(apiclient consulsd.Client, logger log.Logger, retryMax int, retryTimeout time.Duration) userendpoint.Set {
	var (
		tags        = []string{}
		passingOnly = true
		instancer   = consulsd.NewInstancer(apiclient, logger, ServiceName, tags, passingOnly)
	)
	return NewWithInstancer(instancer, logger, retryMax, retryTimeout)
}

func NewWithInstancer(instancer sd.Instancer, logger log.Logger, retryMax int, retryTimeout time.Duration) userendpoint.Set {
	endpoints := userendpoint.Set{}
	{
		factory := factoryFor(func(s userendpoint.Set) endpoint.Endpoint { return s.RegisterEndpoint })
		endpointer := sd.NewEndpointer(instancer, factory, logger)
		balancer := lb.NewRoundRobin(endpointer)
		retry := lb.Retry(retryMax, retryTimeout, balancer)
		endpoints.RegisterEndpoint = retry
	}
	{
		factory := factoryFor(func(s userendpoint.Set) endpoint.Endpoint { return s.LoginEndpoint })
		endpointer := sd.NewEndpointer(instancer, factory, logger)
		balancer := lb.NewRoundRobin(endpointer)
		retry := lb.Retry(retryMax, retryTimeout, balancer)
		endpoints.LoginEndpoint = retry
	}
	{
		factory := factoryFor(func(s userendpoint.Set) endpoint.Endpoint { return s.UsersEndpoint })
		endpointer := sd.NewEndpointer(instancer, factory, logger)
		balancer := lb.NewRoundRobin(endpointer)
		retry := lb.Retry(retryMax, retryTimeout, balancer)
		endpoints.UsersEndpoint = retry
	}
	return endpoints
}

func factoryFor(pick func(userendpoint.Set) endpoint.Endpoint) sd.Factory {
	return func(instance string) (endpoint.Endpoint, io.Closer, error) {
		set, err := usertransport.NewHTTPClient(instance + usertransport.PathPrefix)
		if err != nil {
			return nil, nil, err
		}
		return pick(set), nil, nil
	}
}
