package overlay

// Media types used when describing resources as OCI content descriptors.
const (
	// MediaTypeResource is the media type of an exported resource.
	MediaTypeResource = "application/vnd.meigma.overlay.resource.v1"

	// AnnotationLevel records the compression level a resource is stored at.
	AnnotationLevel = "dev.meigma.overlay.level"

	// AnnotationStoredSize records the on-disk size of a resource.
	AnnotationStoredSize = "dev.meigma.overlay.stored-size"
)
