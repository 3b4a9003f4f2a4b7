package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 10 * time.Second

var (
	cfg     Config
	verbose bool
	logger  *zap.Logger
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envErr error
	root := &cobra.Command{
		Use:          "wordplay",
		Short:        "Serveur des exercices d'arrangement de lettres et d'association",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envErr != nil {
				return envErr
			}
			if verbose {
				cfg.LogLevel = "debug"
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			var err error
			logger, err = newLogger(cfg.LogLevel)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	cfg, envErr = LoadConfig()

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "journalisation de niveau debug")
	root.PersistentFlags().StringVar(&cfg.Port, "port", cfg.Port, "port HTTP")
	root.PersistentFlags().StringVar(&cfg.ContentFile, "content", cfg.ContentFile, "fichier YAML de contenu (rechargé à chaud)")
	root.PersistentFlags().StringVar(&cfg.StatsDB, "stats-db", cfg.StatsDB, "base SQLite des tentatives (mémoire si vide)")
	root.PersistentFlags().DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "durée d'inactivité avant expiration d'une session")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Démarre le serveur HTTP",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(cmd.Context())
			},
		},
		newContentCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Affiche la version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), version)
			},
		},
	)
	return root
}

func newContentCmd() *cobra.Command {
	content := &cobra.Command{
		Use:   "content",
		Short: "Outils pour les fichiers de contenu",
	}
	content.AddCommand(&cobra.Command{
		Use:   "check <file>",
		Short: "Valide un fichier de contenu",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := LoadContentFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s : %d mots, %d paires\n", args[0], len(c.Words), len(c.Pairs))
			return nil
		},
	})
	return content
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	content := DefaultContent()
	if cfg.ContentFile != "" {
		c, err := LoadContentFile(cfg.ContentFile)
		if err != nil {
			return err
		}
		content = c
	}
	source := NewContentSource(content)

	var stats AttemptRecorder = NewMemoryRecorder()
	if cfg.StatsDB != "" {
		rec, err := OpenSQLiteRecorder(ctx, cfg.StatsDB)
		if err != nil {
			return err
		}
		stats = rec
		logger.Info("Statistiques persistées", zap.String("path", cfg.StatsDB))
	}
	defer stats.Close()

	var generator ContentGenerator
	if cfg.GCPProject != "" {
		gemini, err := NewGeminiClient(ctx, GeminiConfig{
			Project: cfg.GCPProject,
			Region:  cfg.GCPRegion,
			Model:   cfg.GeminiModel,
		})
		if err != nil {
			return fmt.Errorf("initialize Gemini: %w", err)
		}
		generator = gemini
		logger.Info("Client Gemini initialisé", zap.String("project", cfg.GCPProject), zap.String("model", gemini.Model()))
	} else {
		logger.Info("GCP_PROJECT_ID non défini, génération de contenu désactivée")
	}

	store := NewStore()
	srv := NewServer(ServerDeps{
		Store:     store,
		Content:   source,
		Generator: generator,
		Stats:     stats,
		Logger:    logger,
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Serveur démarré", zap.String("url", "http://localhost:"+cfg.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("Arrêt du serveur")
		return httpServer.Shutdown(shutdownCtx)
	})
	g.Go(func() error { return srv.Run(ctx) })
	g.Go(func() error {
		return store.RunJanitor(ctx, cfg.JanitorInterval, cfg.SessionTTL, logger)
	})

	if cfg.ContentFile != "" {
		watcher, err := NewContentWatcher(cfg.ContentFile, source, logger)
		if err != nil {
			logger.Warn("Rechargement à chaud désactivé", zap.Error(err))
		} else {
			g.Go(func() error { return watcher.Run(ctx) })
		}
	}

	return g.Wait()
}
