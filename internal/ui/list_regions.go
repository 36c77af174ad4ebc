package ui

import "fmt"

// ListRegions prints the regions available for analysis.
func ListRegions() {
	PrintWarning("To add a new region, add its '.geojson' file at 'data/geojsons' folder.\nSettlement points go in a matching '<region>_settlements.geojson' file.")

	names, err := RegionNames()
	if err != nil {
		PrintError(err.Error())
		return
	}

	fmt.Printf("%s\nAvailable regions:%s\n", ColorGreen, ColorReset)
	for _, name := range names {
		fmt.Printf("%s- %s%s\n", ColorGreen, name, ColorReset)
	}
}
