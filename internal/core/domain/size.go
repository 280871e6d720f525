package domain

import (
	"fmt"
	"strconv"
)

var sizeUnits = []string{"KB", "MB", "GB", "TB"}

// FormatSize renders a byte count with a human readable unit.
// Values below one kilobyte are printed as whole bytes, larger values with
// two decimals in base 1024.
func FormatSize(bytes int64) string {
	sign := ""
	if bytes < 0 {
		sign = "-"
		bytes = -bytes
	}
	if bytes < 1024 {
		return sign + strconv.FormatInt(bytes, 10) + " B"
	}

	value := float64(bytes) / 1024
	unit := 0
	for value >= 1024 && unit < len(sizeUnits)-1 {
		value /= 1024
		unit++
	}
	return fmt.Sprintf("%s%.2f %s", sign, value, sizeUnits[unit])
}

// PercentChange returns how much smaller newSize is than oldSize, e.g. "30.00%".
// A larger newSize yields a negative percentage.
func PercentChange(oldSize, newSize int64) string {
	if oldSize == 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", 100-100*float64(newSize)/float64(oldSize))
}

// SizeStats describes the difference between an original file and its replacement.
type SizeStats struct {
	PercentChange string
	SizeChange    string
	ChangeType    string
}

// NewSizeStats computes the stats shown for a replaced file.
func NewSizeStats(oldSize, newSize int64) SizeStats {
	diff := oldSize - newSize
	changeType := "smaller"
	if diff < 0 {
		changeType = "larger"
		diff = -diff
	}
	return SizeStats{
		PercentChange: PercentChange(oldSize, newSize),
		SizeChange:    FormatSize(diff),
		ChangeType:    changeType,
	}
}

// ProcessedMessage formats the status line for a replaced file.
func ProcessedMessage(path string, stats SizeStats) string {
	return fmt.Sprintf("%s (%s / %s %s)", path, stats.PercentChange, stats.SizeChange, stats.ChangeType)
}
