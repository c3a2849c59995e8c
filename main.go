package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"inpaint/controllers"
	"inpaint/middlewares"
	"inpaint/models"
	"inpaint/storage"
	"inpaint/utils"
)

var (
	configPath string
	debugMode  bool
)

var rootCmd = &cobra.Command{
	Use:           "inpaint",
	Short:         "Upload service for original/mask image pairs",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		utils.LoadEnvFiles()

		config, err := utils.NewConfig(configPath)
		if err != nil {
			return err
		}
		if debugMode {
			config.Server.Debug = true
		}
		return run(config)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the YAML config file")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable gin debug mode and debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func run(config *utils.Config) error {
	utils.SetupLogging(config)
	log.Info("Starting inpaint upload service...")

	// Debug mode enables gin-gonic debug mode
	if !config.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := models.ConnectDataBase(models.DatabaseOptions{
		Driver:          config.Database.Driver,
		DSN:             config.Database.DSN,
		MaxIdleConns:    config.Database.MaxIdleConns,
		MaxOpenConns:    config.Database.MaxOpenConns,
		ConnMaxLifetime: config.Database.ConnMaxLifetime,
	})
	if err != nil {
		return err
	}
	if err := models.AutoMigrate(db); err != nil {
		return err
	}
	store := models.NewStore(db)

	writer, err := storage.NewWriter(config.Storage.UploadDir)
	if err != nil {
		return err
	}

	r := newRouter(config)
	controllers.RegisterRoutes(r, store, writer, writer.Root(), config)

	srv := &http.Server{
		Addr:         config.Addr(),
		Handler:      r,
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(fmt.Sprintf("Listening on %s", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// kill (no param) default send syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-quit:
	}
	log.Info("Shutdown Server ...")

	ctx, cancel := context.WithTimeout(context.Background(), config.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Info("Server exiting")
	return nil
}

// newRouter Engine with the middleware stack shared by all routes
func newRouter(config *utils.Config) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.Cors())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.Metrics())
	// Stored images are already compressed
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{config.Storage.URLPrefix, "/metrics"})))

	return r
}
