package ui

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chaco-verde/chaco-verde-research-cli/internal/properties"
)

// Colors for consistent UI
const (
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorReset  = "\033[0m"
)

// PrintWarning displays a warning message with consistent formatting
func PrintWarning(message string) {
	fmt.Printf("%s\nWarning:%s\n", ColorYellow, ColorReset)
	fmt.Printf("%s%s%s\n", ColorYellow, message, ColorReset)
}

// PrintError displays an error message with consistent formatting
func PrintError(message string) {
	fmt.Printf("\n%sError: %s%s\n", ColorRed, message, ColorReset)
}

// PrintSuccess displays a success message with consistent formatting
func PrintSuccess(message string) {
	fmt.Printf("\n%s%s%s\n", ColorGreen, message, ColorReset)
}

// PrintInfo displays an info message with consistent formatting
func PrintInfo(message string) {
	fmt.Printf("%s%s%s", ColorBlue, message, ColorReset)
}

// ReadString reads a string from stdin with trimming
func ReadString(prompt string) string {
	reader := bufio.NewReader(os.Stdin)
	PrintInfo(prompt)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// ReadInt reads an integer from stdin with validation
func ReadInt(prompt string, min, max int) (int, error) {
	PrintInfo(prompt)
	var input string
	fmt.Scanln(&input)
	input = strings.TrimSpace(input)

	value, err := strconv.Atoi(input)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", input)
	}

	if value < min || value > max {
		return 0, fmt.Errorf("value must be between %d and %d", min, max)
	}

	return value, nil
}

// ReadFloat reads a float from stdin, falling back to a default on empty input
func ReadFloat(prompt string, fallback float64) (float64, error) {
	input := ReadString(prompt)
	if input == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", input)
	}
	return value, nil
}

// ReadYearRange reads an inclusive start and end year
func ReadYearRange() (int, int, error) {
	currentYear := time.Now().Year()
	start, err := ReadInt("Enter the start year: ", 2015, currentYear)
	if err != nil {
		return 0, 0, err
	}
	end, err := ReadInt("Enter the end year: ", start, currentYear)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// RegionNames lists the regions available in the geojsons folder
func RegionNames() ([]string, error) {
	files, err := os.ReadDir(properties.RootPath() + "/data/geojsons")
	if err != nil {
		return nil, fmt.Errorf("error reading geojsons folder: %s", err.Error())
	}

	var names []string
	for _, file := range files {
		name := file.Name()
		if strings.HasSuffix(name, ".geojson") && !strings.HasSuffix(name, "_settlements.geojson") {
			names = append(names, strings.TrimSuffix(name, ".geojson"))
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no regions found in the geojsons folder")
	}
	return names, nil
}

// SelectRegion displays available regions and returns the selected name
func SelectRegion() (string, error) {
	names, err := RegionNames()
	if err != nil {
		return "", err
	}

	fmt.Printf("%s\nAvailable regions:%s\n", ColorGreen, ColorReset)
	for i, name := range names {
		fmt.Printf("%s%d. %s%s\n", ColorGreen, i+1, name, ColorReset)
	}

	choice, err := ReadInt("Enter the number of the region you want to analyze: ", 1, len(names))
	if err != nil {
		return "", err
	}

	selected := names[choice-1]
	fmt.Printf("%sYou selected the region: %s%s\n", ColorGreen, selected, ColorReset)
	return selected, nil
}
