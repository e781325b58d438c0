package config

// Config is the decoded configuration.
type Config struct {
	Section Section `json:"section"`
	Device  *Device `json:"device,omitempty"`
	Log     Log     `json:"log"`
	Retry   Retry   `json:"retry"`
}

// Section selects and configures the section backend.
type Section struct {
	Backend     string  `json:"backend"`
	Concurrency int     `json:"concurrency"`
	Local       *Local  `json:"local,omitempty"`
	Minio       *Minio  `json:"minio,omitempty"`
	S3          *S3     `json:"s3,omitempty"`
	Git         *Git    `json:"git,omitempty"`
	GitHub      *GitHub `json:"github,omitempty"`
	OCI         *OCI    `json:"oci,omitempty"`
}

// Local is a directory on the local filesystem.
type Local struct {
	Root string `json:"root"`
}

// Minio is a MinIO bucket.
type Minio struct {
	Endpoint  string `json:"endpoint"`
	Bucket    string `json:"bucket"`
	AccessKey string `json:"accessKey"`
	SecretKey string `json:"secretKey"`
	UseSSL    bool   `json:"useSSL"`
	Prefix    string `json:"prefix"`
}

// S3 is an S3 or S3-compatible bucket.
type S3 struct {
	Bucket       string `json:"bucket"`
	Prefix       string `json:"prefix"`
	Region       string `json:"region"`
	Endpoint     string `json:"endpoint"`
	UsePathStyle bool   `json:"usePathStyle"`
	AccessKey    string `json:"accessKey"`
	SecretKey    string `json:"secretKey"`
}

// Git is a local repository read at a revision.
type Git struct {
	Path     string `json:"path"`
	Revision string `json:"revision"`
	Dir      string `json:"dir"`
}

// GitHub is a repository read through the contents API.
type GitHub struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
	Ref   string `json:"ref"`
	Dir   string `json:"dir"`
	Token string `json:"token"`
}

// OCI is an artifact in an OCI registry.
type OCI struct {
	Reference string `json:"reference"`
	PlainHTTP bool   `json:"plainHTTP"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}

// Device configures the device port.
type Device struct {
	Driver      string `json:"driver"`
	Address     string `json:"address"`
	ReadSize    int    `json:"readSize"`
	Baud        int    `json:"baud"`
	ReadTimeout string `json:"readTimeout"`
}

// Log configures the slog handler.
type Log struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// Retry configures the caller-side retry policy.
type Retry struct {
	MaxAttempts     int    `json:"maxAttempts"`
	InitialInterval string `json:"initialInterval"`
	MaxInterval     string `json:"maxInterval"`
	MaxElapsedTime  string `json:"maxElapsedTime"`
}
