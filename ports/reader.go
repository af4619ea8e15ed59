package ports

import (
	"guts/domain/guts"
)

// SeriesReader loads observation series from files. Series are returned as
// read; validation happens when they are set on a model.
type SeriesReader interface {
	ReadExposure(path string) (guts.ExposureSeries, error)
	ReadSurvivors(path string) (guts.SurvivorSeries, error)
}
