package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/watchfire-io/labwatch/internal/catalog"
	"github.com/watchfire-io/labwatch/internal/config"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Run or query a catalog service",
}

var catalogServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve an in-memory catalog for development",
	Long: `Serve an in-memory catalog over gRPC. Runs are loaded from a runs file:

  version: 1
  runs:
    - run_id: 1234
      system: host.example.com
    - run_id: 1235
      system: other.example.com
      panic_ignore: true`,
	RunE: runCatalogServe,
}

var catalogRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List the active runs a catalog reports",
	RunE:  runCatalogRuns,
}

var (
	catalogPort     int
	catalogRunsPath string
	catalogAddr     string
)

func init() {
	catalogServeCmd.Flags().IntVar(&catalogPort, "port", 50051, "Port to listen on (0 for dynamic allocation)")
	catalogServeCmd.Flags().StringVar(&catalogRunsPath, "runs", "", "Runs file to seed the catalog with")
	catalogRunsCmd.Flags().StringVar(&catalogAddr, "addr", "", "Catalog address (default catalog_addr from settings)")

	catalogCmd.AddCommand(catalogServeCmd)
	catalogCmd.AddCommand(catalogRunsCmd)
}

func runCatalogServe(cmd *cobra.Command, args []string) error {
	backend := catalog.NewMemory()
	if catalogRunsPath != "" {
		runs, err := config.LoadRunsFile(catalogRunsPath)
		if err != nil {
			return fmt.Errorf("failed to load runs file: %w", err)
		}
		backend.Seed(runs)
	}

	srv, err := catalog.NewServer(catalogPort, backend)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve()
	}()
	log.Printf("[catalog] Serving on port %d", srv.Port())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("[catalog] Received signal %v, shutting down...", sig)
	case err := <-errCh:
		return fmt.Errorf("catalog server error: %w", err)
	}
	srv.Stop()
	return nil
}

func runCatalogRuns(cmd *cobra.Command, args []string) error {
	addr := catalogAddr
	if addr == "" {
		settings, err := config.LoadSettings("")
		if err != nil {
			return err
		}
		addr = settings.CatalogAddr
	}

	client, err := catalog.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to catalog: %w", err)
	}
	defer client.Close()

	runs, err := client.ActiveRuns(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No active runs.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSYSTEM\tPANIC IGNORE")
	for _, r := range runs {
		fmt.Fprintf(tw, "%d\t%s\t%t\n", r.RunID, r.System, r.PanicIgnore)
	}
	return tw.Flush()
}
