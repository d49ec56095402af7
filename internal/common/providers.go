package common

// Catalog and collection constants for consistent naming across the application
const (
	// DefaultCatalogURL is the public STAC API searched for scenes
	DefaultCatalogURL = "https://earth-search.aws.element84.com/v1"

	// CollectionSentinel2L2A is the identifier of the Sentinel-2 level-2A collection
	CollectionSentinel2L2A = "sentinel-2-l2a"

	// DisplayNameSentinel2 is the human-readable name shown in the UI
	DisplayNameSentinel2 = "Sentinel-2"

	// CloudCoverProperty is the STAC eo extension property holding cloud cover percent
	CloudCoverProperty = "eo:cloud_cover"

	// ThumbnailAssetRole is the asset key carrying the preview image
	ThumbnailAssetRole = "thumbnail"

	// DefaultCloudCoverCeiling is the cloud cover percentage scenes must stay below
	DefaultCloudCoverCeiling = 15.0

	// WorstCloudCover is the ordering value used for scenes without cloud cover
	WorstCloudCover = 100.0
)
