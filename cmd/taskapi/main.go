package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	consulsd "github.com/go-kit/kit/sd/consul"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/mux"
	"github.com/hashicorp/consul/api"
	"github.com/ichigozero/todokit/authsvc/pkg/authservice"
	"github.com/ichigozero/todokit/httpapi"
	"github.com/ichigozero/todokit/tasksvc"
	taskredis "github.com/ichigozero/todokit/tasksvc/cache/redis"
	taskclient "github.com/ichigozero/todokit/tasksvc/client"
	taskgorm "github.com/ichigozero/todokit/tasksvc/db/gorm"
	taskmongo "github.com/ichigozero/todokit/tasksvc/db/mongo"
	"github.com/ichigozero/todokit/tasksvc/pkg/taskendpoint"
	"github.com/ichigozero/todokit/tasksvc/pkg/taskservice"
	"github.com/ichigozero/todokit/tasksvc/pkg/tasktransport"
	"github.com/ichigozero/todokit/usersvc"
	usergorm "github.com/ichigozero/todokit/usersvc/db/gorm"
	usermongo "github.com/ichigozero/todokit/usersvc/db/mongo"
	"github.com/ichigozero/todokit/usersvc/pkg/userendpoint"
	"github.com/ichigozero/todokit/usersvc/pkg/userservice"
	"github.com/ichigozero/todokit/usersvc/pkg/usertransport"
	"github.com/joho/godotenv"
	"github.com/oklog/oklog/pkg/group"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/twinj/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	libgorm "gorm.io/gorm"
)

func main() {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	fs := flag.NewFlagSet("taskapi", flag.ExitOnError)
	var (
		httpAddr = fs.String(
			"http.addr",
			getEnv("HTTP_ADDR", ":3000"),
			"HTTP listen address",
		)
		secretKey = fs.String(
			"secret.key",
			getEnv("SECRET_KEY", ""),
			"HS256 signing secret for bearer tokens",
		)
		mongoURI = fs.String(
			"mongo.uri",
			getEnv("MONGO_URI", ""),
			"MongoDB connection URI",
		)
		mongoDB = fs.String(
			"mongo.db",
			getEnv("MONGO_DB", "todo"),
			"MongoDB database name",
		)
		databaseURL = fs.String(
			"database.url",
			getEnv("DATABASE_URL", ""),
			"Postgres URL, used when no MongoDB URI is set",
		)
		sqlitePath = fs.String(
			"sqlite.path",
			getEnv("SQLITE_PATH", "gorm.db"),
			"SQLite file, used when neither MongoDB nor Postgres is set",
		)
		redisAddr = fs.String(
			"redis.addr",
			getEnv("REDIS_ADDR", ""),
			"Redis address for the task cache, empty disables caching",
		)
		cacheTTL = fs.Duration(
			"cache.ttl",
			time.Duration(getEnvAsInt("CACHE_TTL", 60))*time.Second,
			"task cache entry lifetime",
		)
		consulAddr = fs.String(
			"consul.addr",
			getEnv("CONSUL_ADDR", ""),
			"Consul agent address, empty disables registration",
		)
	)

	fs.Usage = usageFor(fs, os.Args[0]+" [flags]")
	fs.Parse(os.Args[1:])

	var logger log.Logger
	{
		logger = log.NewLogfmtLogger(os.Stderr)
		logger = log.With(logger, "ts", log.DefaultTimestampUTC)
		logger = log.With(logger, "caller", log.DefaultCaller)
	}

	if *secretKey == "" {
		level.Error(logger).Log("err", "secret.key (SECRET_KEY) is required")
		os.Exit(1)
	}
	secret := []byte(*secretKey)

	var (
		taskRepository tasksvc.TaskRepository
		userRepository usersvc.UserRepository
	)
	switch {
	case *mongoURI != "":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(*mongoURI))
		if err == nil {
			err = client.Ping(ctx, nil)
		}
		if err != nil {
			cancel()
			level.Error(logger).Log("store", "mongo", "during", "Connect", "err", err)
			os.Exit(1)
		}
		defer client.Disconnect(context.Background())

		db := client.Database(*mongoDB)
		if err := usermongo.EnsureIndexes(ctx, db); err != nil {
			cancel()
			level.Error(logger).Log("store", "mongo", "during", "EnsureIndexes", "err", err)
			os.Exit(1)
		}
		cancel()

		taskRepository = taskmongo.NewTaskRepository(db)
		userRepository = usermongo.NewUserRepository(db)
		logger.Log("store", "mongo", "db", *mongoDB)
	default:
		var (
			db     *libgorm.DB
			err    error
			config = &libgorm.Config{TranslateError: true}
		)
		if *databaseURL != "" {
			db, err = libgorm.Open(postgres.Open(*databaseURL), config)
			logger.Log("store", "postgres")
		} else {
			db, err = libgorm.Open(sqlite.Open(*sqlitePath), config)
			logger.Log("store", "sqlite", "path", *sqlitePath)
		}
		if err == nil {
			err = taskgorm.Migrate(db)
		}
		if err == nil {
			err = usergorm.Migrate(db)
		}
		if err != nil {
			level.Error(logger).Log("store", "gorm", "err", err)
			os.Exit(1)
		}

		taskRepository = taskgorm.NewTaskRepository(db)
		userRepository = usergorm.NewUserRepository(db)
	}

	var taskCount, userCount *kitprometheus.Counter
	var taskLatency, userLatency *kitprometheus.Summary
	{
		fieldKeys := []string{"method"}
		taskCount = kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: "todokit",
			Subsystem: "task_service",
			Name:      "request_count",
			Help:      "Number of requests received.",
		}, fieldKeys)
		taskLatency = kitprometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
			Namespace: "todokit",
			Subsystem: "task_service",
			Name:      "request_latency_seconds",
			Help:      "Total duration of requests in seconds.",
		}, fieldKeys)
		userCount = kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: "todokit",
			Subsystem: "user_service",
			Name:      "request_count",
			Help:      "Number of requests received.",
		}, fieldKeys)
		userLatency = kitprometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
			Namespace: "todokit",
			Subsystem: "user_service",
			Name:      "request_latency_seconds",
			Help:      "Total duration of requests in seconds.",
		}, fieldKeys)
	}

	var taskService taskservice.Service
	{
		taskLogger := log.With(logger, "component", "taskservice")
		taskService = taskservice.New(taskRepository, taskLogger)
		taskService = taskservice.InstrumentingMiddleware(taskCount, taskLatency)(taskService)

		if *redisAddr != "" {
			cache := taskredis.NewTaskCache(taskredis.NewClient(*redisAddr), *cacheTTL)
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := cache.Ping(ctx)
			cancel()
			if err != nil {
				level.Warn(logger).Log("cache", "redis", "addr", *redisAddr, "err", err)
			}
			taskService = taskservice.CachingMiddleware(cache, taskLogger)(taskService)
		}
	}

	var userService userservice.Service
	{
		userService = userservice.New(
			userRepository,
			authservice.NewTokenizer(secret),
			log.With(logger, "component", "userservice"),
		)
		userService = userservice.InstrumentingMiddleware(userCount, userLatency)(userService)
	}

	var handler http.Handler
	{
		r := mux.NewRouter()
		r.NotFoundHandler = httpapi.NotFound()
		r.MethodNotAllowedHandler = httpapi.MethodNotAllowed()

		taskHandler := tasktransport.NewHTTPHandler(
			taskendpoint.New(taskService, log.With(logger, "component", "taskendpoint")),
			secret,
			log.With(logger, "component", "tasktransport"),
		)
		userHandler := usertransport.NewHTTPHandler(
			userendpoint.New(userService, log.With(logger, "component", "userendpoint")),
			log.With(logger, "component", "usertransport"),
		)

		r.PathPrefix(tasktransport.PathPrefix).Handler(httpapi.StripPrefix(tasktransport.PathPrefix, taskHandler))
		r.PathPrefix(usertransport.PathPrefix).Handler(httpapi.StripPrefix(usertransport.PathPrefix, userHandler))
		r.Methods("GET").Path("/health").Handler(httpapi.Health())
		r.Methods("GET").Path("/metrics").Handler(promhttp.Handler())

		handler = httpapi.CORS()(r)
	}

	if *consulAddr != "" {
		registrar, err := newRegistrar(*consulAddr, *httpAddr, logger)
		if err != nil {
			level.Error(logger).Log("during", "consul", "err", err)
			os.Exit(1)
		}
		registrar.Register()
		defer registrar.Deregister()
	}

	var g group.Group
	{
		httpListener, err := net.Listen("tcp", *httpAddr)
		if err != nil {
			level.Error(logger).Log("transport", "HTTP", "during", "Listen", "err", err)
			os.Exit(1)
		}
		g.Add(func() error {
			logger.Log("transport", "HTTP", "addr", *httpAddr)
			return http.Serve(httpListener, handler)
		}, func(error) {
			httpListener.Close()
		})
	}
	{
		// This function just sits and waits for ctrl-C.
		cancelInterrupt := make(chan struct{})
		g.Add(func() error {
			c := make(chan os.Signal, 1)
			signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
			select {
			case sig := <-c:
				return fmt.Errorf("received signal %s", sig)
			case <-cancelInterrupt:
				return nil
			}
		}, func(error) {
			close(cancelInterrupt)
		})
	}
	logger.Log("exit", g.Run())
}

func newRegistrar(consulAddr, httpAddr string, logger log.Logger) (*consulsd.Registrar, error) {
	consulConfig := api.DefaultConfig()
	consulConfig.Address = consulAddr
	consulClient, err := api.NewClient(consulConfig)
	if err != nil {
		return nil, err
	}

	host, port, err := net.SplitHostPort(httpAddr)
	if err != nil {
		return nil, err
	}
	if host == "" {
		host = "localhost"
	}

	p, _ := strconv.Atoi(port)
	asr := &api.AgentServiceRegistration{
		ID:      uuid.NewV4().String(),
		Name:    taskclient.ServiceName,
		Address: host,
		Port:    p,
		Check: &api.AgentServiceCheck{
			HTTP:     "http://" + net.JoinHostPort(host, port) + "/health",
			Interval: "10s",
			Timeout:  "1s",
		},
	}

	return consulsd.NewRegistrar(consulsd.NewClient(consulClient), asr, logger), nil
}

func usageFor(fs *flag.FlagSet, short string) func() {
	return func() {
		fmt.Fprintf(os.Stderr, "USAGE\n")
		fmt.Fprintf(os.Stderr, "  %s\n", short)
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "FLAGS\n")
		w := tabwriter.NewWriter(os.Stderr, 0, 2, 2, ' ', 0)
		fs.VisitAll(func(f *flag.Flag) {
			fmt.Fprintf(w, "\t-%s %s\t%s\n", f.Name, f.DefValue, f.Usage)
		})
		w.Flush()
		fmt.Fprintf(os.Stderr, "\n")
	}
}

func getEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = fallback
	}
	return value
}

func getEnvAsInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}

	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}
