package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/watchfire-io/labwatch/internal/config"
	"github.com/watchfire-io/labwatch/internal/daemon/console"
)

var scanConfigPath string

var scanCmd = &cobra.Command{
	Use:   "scan FILE",
	Short: "Scan a console log for panic signatures",
	Long: `Scan reads a console log the same way the daemon does, block by block,
and prints every line matching a panic signature. It exits non-zero when a
panic is found.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanConfigPath, "config", "", "Settings file with block size and signatures")
}

// Finding is a line that matched a panic signature.
type Finding struct {
	Line      int
	Signature string
	Text      string
}

func runScan(cmd *cobra.Command, args []string) error {
	settings, err := config.LoadSettings(scanConfigPath)
	if err != nil {
		return err
	}
	sigs, err := console.SignaturesFromSettings(settings.PanicSignatures)
	if err != nil {
		return err
	}

	findings, err := scanFile(args[0], console.NewPanicDetector(sigs...), settings.BlockSize, settings.FlushLimit())
	if err != nil {
		return err
	}
	if len(findings) == 0 {
		fmt.Println(render(styleSuccess, "No panics found."))
		return nil
	}

	for _, f := range findings {
		fmt.Printf("%s %s %s\n",
			render(styleLabel, fmt.Sprintf("%6d:", f.Line)),
			render(styleError, f.Signature),
			render(styleHint, f.Text))
	}
	return fmt.Errorf("%d panic line(s) found in %s", len(findings), args[0])
}

// scanFile reads path to the end in blocks and returns every matching line.
func scanFile(path string, detector *console.PanicDetector, blockSize, limit int) ([]Finding, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	reader := console.ChunkReader{BlockSize: blockSize}
	var (
		findings []Finding
		pending  []byte
		offset   int64
		newlines int // terminators consumed so far
	)
	// Pieces of an over-long line cut by a forced flush share its number.
	check := func(line []byte, terminated bool) {
		if sig, ok := detector.Detect(string(line)); ok {
			findings = append(findings, Finding{Line: newlines + 1, Signature: sig.Name, Text: string(line)})
		}
		if terminated {
			newlines++
		}
	}

	for {
		chunk, err := reader.Read(path, offset)
		if err != nil {
			return nil, err
		}
		if len(chunk.Data) == 0 {
			break
		}
		var lines [][]byte
		lines, pending = console.Reassemble(pending, chunk.Data, limit)
		forced := pending == nil && chunk.Data[len(chunk.Data)-1] != '\n'
		for i, line := range lines {
			check(line, !(forced && i == len(lines)-1))
		}
		offset = chunk.Offset
	}

	// A file that ends without a newline still has a last line.
	if len(pending) > 0 {
		check(pending, false)
	}
	return findings, nil
}
