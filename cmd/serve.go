package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"panel-rbac/auth"
	"panel-rbac/controllers"
	"panel-rbac/convention"
	"panel-rbac/database"
	grpcserver "panel-rbac/grpc_server"
	"panel-rbac/metrics"
	"panel-rbac/registry"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"github.com/go-openapi/spec"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var flagAdvertiseHost string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP management API and the gRPC authorization service",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAdvertiseHost, "advertise-host", "", "Address registered with Consul (default: hostname)")
}

func runServe(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := e.bootstrapIfEmpty(ctx); err != nil {
		return err
	}

	c := e.wire()
	if err := c.cache.Rebuild(ctx); err != nil {
		e.logger.Warn("Starting without enabled plugins cache", zap.Error(err))
	}

	resources := controllers.NewResourceRegistry()
	missing, err := controllers.MissingRouteCodes(ctx, resources, c.perms)
	if err != nil {
		return err
	}
	for _, code := range missing {
		// Routes guarded by this code can only be reached by granting it to a custom role.
		e.logger.Warn("Route permission is not a system permission", zap.String("code", code))
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", e.cfg.HTTPPort),
		Handler:           newContainer(e, c, resources),
		ReadHeaderTimeout: 10 * time.Second,
	}

	grpcServer, health := grpcserver.NewServer(e.logger, grpcserver.NewAuthorizationServer(c.authorizer, c.users, e.logger))
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", e.cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("listening on gRPC port %d: %w", e.cfg.GRPCPort, err)
	}

	errCh := make(chan error, 2)
	go func() {
		e.logger.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		e.logger.Info("gRPC server listening", zap.String("addr", lis.Addr().String()))
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	deregister := e.registerWithConsul()
	defer deregister()

	select {
	case <-ctx.Done():
		e.logger.Info("Shutting down")
	case err = <-errCh:
		e.logger.Error("Server failed", zap.Error(err))
	}

	health.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if serr := httpServer.Shutdown(shutdownCtx); serr != nil {
		e.logger.Warn("HTTP shutdown", zap.Error(serr))
	}
	grpcServer.GracefulStop()
	return err
}

// bootstrapIfEmpty seeds a database that has never been seeded.
func (e *env) bootstrapIfEmpty(ctx context.Context) error {
	if e.db.Migrator().HasTable("permission") {
		return nil
	}
	e.logger.Info("Empty database, running bootstrap")
	return database.Bootstrap(ctx, e.db, e.logger)
}

func newContainer(e *env, c *components, resources *convention.Registry) *restful.Container {
	container := restful.NewContainer()
	container.Filter(controllers.RequestLogger(e.logger.Named("http")))
	container.DoNotRecover(false)
	container.RecoverHandler(func(panicReason interface{}, w http.ResponseWriter) {
		e.logger.Error("Recovered from panic", zap.Any("reason", panicReason))
		w.WriteHeader(http.StatusInternalServerError)
	})

	routes := []interface{ RegisterRoutes(*restful.WebService) }{
		controllers.NewRoleController(c.roleSvc, c.authorizer, resources, e.logger),
		controllers.NewPermissionController(c.permSvc, c.authorizer, resources, e.logger),
		controllers.NewPluginController(c.coordinator, c.cache, c.authorizer, resources, e.logger),
		controllers.NewUserRoleController(c.userRoleSvc, c.authorizer, resources, e.logger),
		controllers.NewAuthzController(c.authorizer, c.users, e.logger),
	}
	for _, ctl := range routes {
		ws := new(restful.WebService)
		ctl.RegisterRoutes(ws)
		container.Add(ws)
	}

	login := new(restful.WebService)
	login.Path("/login").Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)
	login.Route(login.POST("").To(auth.LoginRouteHandler(c.users)).
		Doc("Exchange credentials for a JWT").
		Metadata(restfulspec.KeyOpenAPITags, []string{"auth"}).
		Reads(auth.LoginCredentials{}).
		Returns(http.StatusOK, "Token issued", auth.LoginResponse{}).
		Returns(http.StatusUnauthorized, "Invalid credentials", auth.LoginResponse{}))
	container.Add(login)

	container.Add(restfulspec.NewOpenAPIService(restfulspec.Config{
		WebServices:                   container.RegisteredWebServices(),
		APIPath:                       "/apidocs.json",
		PostBuildSwaggerObjectHandler: describeAPI,
	}))
	container.Handle("/metrics", metrics.Handler(c.registry))
	return container
}

func describeAPI(swo *spec.Swagger) {
	swo.Info = &spec.Info{
		InfoProps: spec.InfoProps{
			Title:       "panel-rbac",
			Description: "Roles, permissions and authorization checks of the hosting panel",
			Version:     "1.0.0",
		},
	}
	swo.SecurityDefinitions = spec.SecurityDefinitions{
		"bearer": spec.APIKeyAuth("Authorization", "header"),
	}
}

// registerWithConsul announces the gRPC endpoint when enabled and returns
// the matching deregistration.
func (e *env) registerWithConsul() func() {
	noop := func() {}
	if !e.cfg.Consul.Enabled {
		return noop
	}

	sugar := e.logger.Sugar()
	reg, err := registry.NewConsulRegistry(e.cfg.Consul, sugar)
	if err != nil {
		sugar.Warnw("Consul registration disabled", "error", err)
		return noop
	}

	host := flagAdvertiseHost
	if host == "" {
		if host, err = os.Hostname(); err != nil {
			host = "127.0.0.1"
		}
	}
	name := e.cfg.ServiceName + "-grpc"
	id := fmt.Sprintf("%s-%s-%d", name, host, e.cfg.GRPCPort)
	target := fmt.Sprintf("%s:%d", host, e.cfg.GRPCPort)

	if err := reg.Register(registry.Instance{
		ID:      id,
		Name:    name,
		Address: host,
		Port:    e.cfg.GRPCPort,
		Tags:    []string{"rbac", "grpc"},
		Check:   registry.GRPCCheck(id, target, "10s", "2s"),
	}); err != nil {
		return noop
	}
	return func() { _ = reg.Deregister(id) }
}
