// Command santerag answers French health questions over a local directory
// of patient brochures, using extractive retrieval only.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"santerag/internal/config"
	"santerag/internal/domain"
	"santerag/internal/logger"
	"santerag/internal/server"
	"santerag/internal/tui"
)

var (
	cfgPath string
	verbose bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "santerag",
		Short:         "Assistant santé extractif sur brochures patients",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			_ = godotenv.Load()
			logger.SetVerbose(verbose)
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to YAML config file (default: ./config.yaml, then ~/.config/santerag/config.yaml)")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose logging")

	root.AddCommand(newIndexCmd(), newServeCmd(), newChatCmd(), newAskCmd())
	return root
}

func loadConfig() (*config.AppConfig, error) {
	if cfgPath != "" {
		return config.Load(cfgPath)
	}
	cfg, path, err := config.LoadDefault()
	if err != nil {
		return nil, err
	}
	logger.Debug("using config %s", path)
	return cfg, nil
}

func newIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Build the embedding index from the brochure directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := buildApp(cfg)
			if err != nil {
				return err
			}
			stats, err := a.svc.BuildIndex(cmd.Context(), cfg.Loader.BrochuresDir)
			if err != nil {
				return err
			}
			fmt.Printf("Indexed %d document(s), %d chunk(s), dimension %d.\n",
				stats.Documents, stats.Chunks, stats.Dimension)
			if cfg.VectorStore.Type != "sqlite" {
				fmt.Println("Note: vector_store.type is not \"sqlite\"; the index was not persisted.")
			}
			return nil
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web interface",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := buildApp(cfg)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := a.ensureIndex(ctx); err != nil {
				return err
			}
			srv, err := server.New(server.Config{
				Addr:        cfg.Server.Addr,
				CORSOrigins: cfg.Server.CORSOrigins,
			}, a.svc)
			if err != nil {
				return err
			}
			fmt.Printf("Serving on %s\n", cfg.Server.Addr)
			return srv.Start(ctx)
		},
	}
}

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Ask questions in a terminal chat",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := buildApp(cfg)
			if err != nil {
				return err
			}
			if err := a.ensureIndex(cmd.Context()); err != nil {
				return err
			}
			_, err = tea.NewProgram(tui.New(a.svc)).Run()
			return err
		},
	}
}

func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask \"question\"",
		Short: "Ask a single question and print the answer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := buildApp(cfg)
			if err != nil {
				return err
			}
			if err := a.ensureIndex(cmd.Context()); err != nil {
				return err
			}
			answer, err := a.svc.Ask(args[0])
			if err != nil {
				return err
			}
			printAnswer(answer)
			return nil
		},
	}
}

func printAnswer(answer domain.Answer) {
	if answer.NoInformation {
		fmt.Println("Aucune information pertinente trouvée dans les brochures chargées.")
		return
	}
	for _, label := range domain.SectionOrder {
		text, ok := answer.Sections[label]
		if !ok {
			continue
		}
		fmt.Printf("%s\n%s\n\n", domain.SectionTitle(label), text)
	}
	if len(answer.Sources) > 0 {
		fmt.Println("Sources :")
		for i, src := range answer.Sources {
			fmt.Printf("  %d. %s (score %.3f, chunk %d)\n", i+1, src.Filename, src.Score, src.ChunkIndex)
		}
	}
}

