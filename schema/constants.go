package schema

// Custom string types for type safety.
type (
	// FeatureName identifies one of the raw risk/safety indicators of a segment.
	FeatureName string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and run history.
	DatabaseBackend string

	// ProviderKind represents the route provider implementation.
	ProviderKind string

	// AdjacencyPolicy decides which segments become graph neighbours.
	AdjacencyPolicy string

	// MapFormat represents the image format of a rendered map.
	MapFormat string
)

// Feature names, matching the CSV column headers.
const (
	CrimeDensity          FeatureName = "crime_density"
	LightingDensity       FeatureName = "lighting_density"
	SurveillanceScore     FeatureName = "surveillance_score"
	PoliceProximity       FeatureName = "police_proximity"
	EmergencyServices     FeatureName = "emergency_services"
	PopulationDensity     FeatureName = "population_density"
	UserFeedback          FeatureName = "user_feedback"
	PublicTransportNearby FeatureName = "public_transport_nearby"
	WeatherConditions     FeatureName = "weather_conditions"
)

// Reserved CSV columns that are not features.
const (
	ColumnRouteID   = "route_id"
	ColumnLatitude  = "latitude"
	ColumnLongitude = "longitude"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All route providers supported.
const (
	NoProvider   ProviderKind = "none" // default
	MockProvider ProviderKind = "mock"
	HTTPProvider ProviderKind = "http"
)

// RowOrderAdjacency links each segment to the next one in input order.
const RowOrderAdjacency AdjacencyPolicy = "row-order"

// All map formats supported.
const (
	SVGMap MapFormat = "svg" // default
	PNGMap MapFormat = "png"
)

// Defaults for the routing trade-off.
const (
	DefaultAlpha        = 0.7
	DefaultBeta         = 0.3
	DefaultAverageSpeed = 30.0 // km/h
)

// AllFeatures lists every known feature in canonical order.
var AllFeatures = []FeatureName{
	CrimeDensity,
	LightingDensity,
	SurveillanceScore,
	PoliceProximity,
	EmergencyServices,
	PopulationDensity,
	UserFeedback,
	PublicTransportNearby,
	WeatherConditions,
}

// ValidFeatures lists all known features.
var ValidFeatures = map[FeatureName]struct{}{
	CrimeDensity:          {},
	LightingDensity:       {},
	SurveillanceScore:     {},
	PoliceProximity:       {},
	EmergencyServices:     {},
	PopulationDensity:     {},
	UserFeedback:          {},
	PublicTransportNearby: {},
	WeatherConditions:     {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidProviders lists all valid route providers.
var ValidProviders = map[ProviderKind]struct{}{
	NoProvider:   {},
	MockProvider: {},
	HTTPProvider: {},
}

// GetDefaultWeights returns the default weight per feature.
// Crime density counts double; the weights sum to 1.
func GetDefaultWeights() map[FeatureName]float64 {
	return map[FeatureName]float64{
		CrimeDensity:          0.2,
		LightingDensity:       0.1,
		SurveillanceScore:     0.1,
		PoliceProximity:       0.1,
		EmergencyServices:     0.1,
		PopulationDensity:     0.1,
		UserFeedback:          0.1,
		PublicTransportNearby: 0.1,
		WeatherConditions:     0.1,
	}
}
