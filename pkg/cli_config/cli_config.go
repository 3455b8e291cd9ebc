package cli_config

import (
	"os"
	"os/user"
	"path/filepath"
)

// CdkHome overrides the directory that holds the CLI's options and cache files.
const CdkHome EnvVar = "CDK_HOME"

// CdkHomeDir returns $CDK_HOME, or ~/.cdk when it isn't set.
func CdkHomeDir() (string, error) {
	if home := CdkHome.GetOr(""); home != "" {
		return home, nil
	}
	osUser, err := user.Current()
	if err != nil {
		return "", err
	}
	return filepath.Join(osUser.HomeDir, ".cdk"), nil
}

// CdkConfigPath returns a path to a file in ~/.cdk/<filename>
func CdkConfigPath(file string) (string, error) {
	cdkPath, err := CdkHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cdkPath, file), nil
}

// CdkCachePath returns a path to a file in ~/.cdk/cache/<filename>
func CdkCachePath(file string) (string, error) {
	cdkPath, err := CdkHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cdkPath, "cache", file), nil
}

func CreateCdkConfigPath() error {
	cdkPath, err := CdkHomeDir()
	if err != nil {
		return err
	}

	// create the directory if it doesn't exist
	_, err = os.Stat(cdkPath)
	if os.IsNotExist(err) {
		err = os.MkdirAll(cdkPath, os.ModePerm)
	}
	return err
}
