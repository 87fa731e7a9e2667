package stage

// Tree layout under a stage root.
const (
	ContentDir   = "content"
	MetadataDir  = "metadata"
	ManifestFile = "stage.yml"
	MetaSuffix   = ".meta"
)

// Reserved metadata keys.
const (
	KeyRubric  = "rubric"
	KeyName    = "name"
	KeyPart    = "part"
	KeyFormat  = "format"
	KeyPayload = "payload"
	KeyError   = "error"
	KeyCTime   = "ctime"
	KeyUUID    = "uuid"
	KeyMIME    = "mime"
	KeySHA256  = "sha256"
)

const (
	// Heap is the name used when a record carries no name.
	Heap = "__heap__"
	// Wild matches every name or every part.
	Wild = "*"
	// RubricEmpty is the rubric of records stored directly under the top
	// directories.
	RubricEmpty = ""
	// CTimeLayout formats creation timestamps (always UTC).
	CTimeLayout = "2006-01-02T15:04:05Z"
)

const (
	metaFormat = "json"
	tempPrefix = ".tmp-"
)
