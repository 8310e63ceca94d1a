package outwriter

import (
	"os"

	"github.com/huangsam/prodscore/internal/contract"
	"golang.org/x/term"
)

const (
	minCellWidth = 8
	maxCellWidth = 40
)

// getTerminalWidth returns the width override or the detected terminal width.
func getTerminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		return 80 // Conservative default for narrow terminals and CI
	}
	return detectedWidth
}

// getMaxCellWidth calculates the maximum width of an input column in the
// preview table, sharing the space left by the fixed columns evenly.
func getMaxCellWidth(cfg *contract.Config, dataColumns int) int {
	termWidth := getTerminalWidth(cfg)

	// Row number + Score + Label with borders/padding
	baseWidth := 28
	if cfg.Explain {
		baseWidth += 35
	}

	if dataColumns <= 0 {
		return maxCellWidth
	}

	// Each data column costs three characters of separator and padding
	available := (termWidth-baseWidth)/dataColumns - 3
	return max(minCellWidth, min(available, maxCellWidth))
}
