package config

// Stage tuning defaults.
const (
	defaultSearchLimit         = 15
	defaultConfidenceThreshold = 0.7
)

// defaultSports is the sport coverage used when none is configured.
var defaultSports = []string{
	"Cricket",
	"Football",
	"Badminton",
	"Running",
	"Gym",
	"Cycling",
	"Swimming",
	"Kabaddi",
	"Yoga",
	"Basketball",
	"Chess",
	"Table Tennis",
}

// defaultLevels is the standard competition tier list.
var defaultLevels = []string{
	"Corporate",
	"School",
	"College/University",
	"Club/Academy",
	"District",
	"State",
	"Zonal/Regional",
	"National",
	"International",
}

// defaultLocalLevels covers neighborhood-scale tiers that use a distinct
// query template set.
var defaultLocalLevels = []string{
	"Local",
	"Community",
	"Residential",
	"Municipal",
	"City",
	"Inter-Club",
	"Inter-School",
	"Inter-College",
	"Neighborhood",
	"Society",
}
