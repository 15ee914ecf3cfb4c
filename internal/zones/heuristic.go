package zones

// latBand partitions a latitude range into longitude cells, each mapped to a
// predetermined district/neighborhood pair. The bands approximate Barcelona's
// districts when no polygon data or geocoder answer is available.
type latBand struct {
	minLat float64
	cells  []lonCell
}

type lonCell struct {
	maxLon       float64
	district     int
	neighborhood int
}

// heuristicBands are evaluated top to bottom; the first band whose minLat is
// exceeded wins, and within a band the first cell whose maxLon bounds the
// longitude wins. The final band and final cell are catch-alls, so every
// coordinate on the planet resolves to something.
var heuristicBands = []latBand{
	{minLat: 41.45, cells: []lonCell{
		{maxLon: 2.13, district: DistrictNouBarris, neighborhood: 48}, // Canyelles
		{maxLon: 180, district: DistrictSantAndreu, neighborhood: 60}, // la Sagrera
	}},
	{minLat: 41.42, cells: []lonCell{
		{maxLon: 2.14, district: DistrictHortaGuinardo, neighborhood: 42}, // Horta
		{maxLon: 2.16, district: DistrictGracia, neighborhood: 30},        // Vila de Gràcia
		{maxLon: 180, district: DistrictSantMarti, neighborhood: 64},      // el Clot
	}},
	{minLat: 41.40, cells: []lonCell{
		{maxLon: 2.13, district: DistrictSarriaSantGervasi, neighborhood: 22}, // Sarrià
		{maxLon: 2.15, district: DistrictLesCorts, neighborhood: 18},          // les Corts
		{maxLon: 2.17, district: DistrictEixample, neighborhood: 5},           // la Dreta de l'Eixample
		{maxLon: 180, district: DistrictSantMarti, neighborhood: 67},          // el Poblenou
	}},
	{minLat: 41.38, cells: []lonCell{
		{maxLon: 2.16, district: DistrictSantsMontjuic, neighborhood: 17}, // Sants
		{maxLon: 2.18, district: DistrictEixample, neighborhood: 8},       // Sant Antoni
		{maxLon: 180, district: DistrictCiutatVella, neighborhood: 1},     // el Raval
	}},
	{minLat: -90, cells: []lonCell{
		{maxLon: 2.15, district: DistrictSantsMontjuic, neighborhood: 11}, // el Poble Sec
		{maxLon: 180, district: DistrictCiutatVella, neighborhood: 3},     // la Barceloneta
	}},
}

// heuristicZone maps a coordinate to a zone via the fixed band table.
// Total: returns a valid assignment for any input, including coordinates far
// outside the municipality.
func heuristicZone(lat, lon float64) ZoneAssignment {
	for _, band := range heuristicBands {
		if lat <= band.minLat {
			continue
		}
		for _, cell := range band.cells {
			if lon < cell.maxLon {
				return ZoneAssignment{
					DistrictCode:     cell.district,
					NeighborhoodCode: cell.neighborhood,
					Source:           SourceHeuristic,
				}
			}
		}
	}
	// lat <= -90 or lon >= 180: degenerate inputs still get the default zone.
	return ZoneAssignment{
		DistrictCode:     DistrictCiutatVella,
		NeighborhoodCode: 3,
		Source:           SourceHeuristic,
	}
}
