package envvar

const (
	// ArnieEnv is the environment variable used to determine the environment
	ArnieEnv = "ARNIE_ENV"

	// ArnieServer is the environment variable used to override the package server address
	ArnieServer = "ARNIE_SERVER"

	// ArnieDownloadDir is the environment variable used to override the artifact download directory
	ArnieDownloadDir = "ARNIE_DOWNLOAD_DIR"

	// ArnieLogFile is the environment variable used to enable logging to a file
	ArnieLogFile = "ARNIE_LOG_FILE"
)
