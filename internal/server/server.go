package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Runtime string

const (
	RuntimeLambda Runtime = "lambda"
	RuntimeHTTP   Runtime = "http"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	engine     *gin.Engine
	runtime    Runtime
	basePath   string
	corsConfig *cors.Config
}

func New() *Server {
	return &Server{
		engine:  gin.New(),
		runtime: RuntimeHTTP,
	}
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) SetRuntime(runtime Runtime) {
	s.runtime = runtime
}

// SetBasePath prefixes every group created afterwards.
func (s *Server) SetBasePath(basePath string) {
	s.basePath = basePath
}

func (s *Server) Use(middleware ...gin.HandlerFunc) {
	s.engine.Use(middleware...)
}

func (s *Server) Group(path string, middleware ...gin.HandlerFunc) *ControllerGroup {
	group := s.engine.Group(s.basePath+path, middleware...)
	return &ControllerGroup{group: group}
}

func (s *Server) RegisterController(path string, controller Controller, middleware ...gin.HandlerFunc) {
	controller.Register(s.Group(path, middleware...))
}

// Start serves until ctx is cancelled. In the Lambda runtime the call
// blocks inside the Lambda event loop instead.
func (s *Server) Start(ctx context.Context, port int) error {
	if s.runtime == RuntimeLambda {
		return s.startLambda()
	}
	return s.startHTTP(ctx, port)
}

func (s *Server) startHTTP(ctx context.Context, port int) error {
	if port < 0 || port > 65535 {
		return fmt.Errorf("invalid port %d", port)
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		slog.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) startLambda() error {
	ginLambda := ginadapter.New(s.engine)

	handler := func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return ginLambda.ProxyWithContext(ctx, req)
	}

	lambda.Start(handler)
	return nil
}

func (s *Server) WithCORS(config *cors.Config) *Server {
	s.corsConfig = config
	s.engine.Use(cors.New(*config))
	return s
}

// CustomCORS allows credentials so the session cookie survives cross-origin calls.
func (s *Server) CustomCORS(allowOrigins []string, allowMethods []string, allowHeaders []string, maxAge time.Duration) *Server {
	config := cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     allowMethods,
		AllowHeaders:     allowHeaders,
		AllowCredentials: true,
		MaxAge:           maxAge,
	}
	return s.WithCORS(&config)
}
