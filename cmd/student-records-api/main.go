// main is the entry point of the Student Records API.
//
// Startup sequence:
//  1. Load configuration from a YAML file
//  2. Initialise the logger
//  3. Connect to (and set up) the SQLite database
//  4. Register all HTTP routes
//  5. Start the HTTP server in a separate goroutine
//  6. Block until an OS signal (Ctrl+C / kill) arrives
//  7. Gracefully shut down: finish in-flight requests, then exit
//
// Running the server:
//
//	go run ./cmd/student-records-api --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/student-records-api
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"student-records-api/internal/config"
	"student-records-api/internal/http/handlers/student"
	"student-records-api/internal/storage/sqlite"
)

func main() {
	// MustLoad reads the YAML config and fatals if anything is wrong;
	// if it returns, config is guaranteed valid.
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)
	// Handlers log through the package-level slog functions, so the
	// configured logger has to become the default.
	slog.SetDefault(log)

	log.Info("starting student-records-api",
		slog.String("env", cfg.Env),
		slog.String("version", "1.0.0"),
	)

	// sqlite.New opens the SQLite file and creates the students table.
	// The result is used through the storage.Storage interface, so the
	// rest of the code never sees *sqlite.SQLite — swapping databases
	// later only requires changing this one line.
	storage, err := sqlite.New(cfg)
	if err != nil {
		log.Error("failed to initialise storage",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("storage initialised",
		slog.String("path", cfg.StoragePath))

	// The handler functions are factories — they receive `storage` and
	// return the actual handler (closure-based dependency injection).
	//
	// {$} anchors a pattern to that exact path, so "GET /students/{$}"
	// matches only /students/ and the literal /students/search/ wins
	// over the {id} wildcard.
	router := http.NewServeMux()

	router.HandleFunc("GET /{$}", student.Home())
	router.HandleFunc("POST /students/{$}", student.New(storage))
	router.HandleFunc("GET /students/{$}", student.GetList(storage))
	router.HandleFunc("GET /students/search/{$}", student.Search(storage))
	router.HandleFunc("GET /students/{id}", student.GetByID(storage))
	router.HandleFunc("PUT /students/{id}", student.Update(storage))
	router.HandleFunc("PATCH /students/{id}", student.Patch(storage))
	router.HandleFunc("DELETE /students/{id}", student.Delete(storage))

	server := &http.Server{
		Addr:    cfg.HTTPServer.Addr,
		Handler: router,

		// Timeouts guard against slow clients holding connections open.
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ListenAndServe blocks, so it runs in its own goroutine while the
	// main goroutine waits for a shutdown signal below.
	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))

		// ErrServerClosed is the expected result of Shutdown().
		if err := server.ListenAndServe(); err != nil &&
			err != http.ErrServerClosed {
			log.Error("server encountered an error",
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Buffered so the signal isn't missed if main is briefly busy.
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")

	// Give in-flight requests up to 5 seconds to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server gracefully",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}

// setupLogger returns a *slog.Logger configured for the given
// environment: human-readable text at DEBUG for dev, JSON for
// staging/prod so aggregators can ingest it.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case "staging":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	default: // "dev" and anything unrecognised
		return slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	}
}
