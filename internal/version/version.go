package version

// AppName is used for backup file names and config/data directories.
const AppName = "inkwell"

// Version is the application version embedded in exported backups.
const Version = "1.2.0"
