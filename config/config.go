package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"sftpfetch/internal/models"
)

const (
	TransportSFTP = "sftp"
	TransportS3   = "s3"
	TransportFTP  = "ftp"
)

type Config struct {
	Transport   string
	Host        string
	Port        int
	Username    string
	Password    string
	KeyFile     string
	Passphrase  string
	KnownHosts  string
	DialTimeout time.Duration

	RemoteDir string
	LocalDirA string
	LocalDirB string

	// S3 backend.
	ApiURL     string
	AccessKey  string
	SecretKey  string
	BucketName string
	Region     string

	// FTP backend; FTPTLS is none, explicit or implicit.
	FTPTLS                string
	FTPInsecureSkipVerify bool

	ProgressStyle string
	CriteriaFile  string

	Criteria       models.SelectionCriteria
	Classification Classification
}

type Classification struct {
	MarkerA string `toml:"marker_a"`
	PrefixA string `toml:"prefix_a"`
	PrefixB string `toml:"prefix_b"`
}

// criteriaFile is the layout of CRITERIA_FILE. Keys left out keep the
// values taken from the environment.
type criteriaFile struct {
	DatePrefixFormat    *string         `toml:"date_prefix_format"`
	NamePatterns        []string        `toml:"name_patterns"`
	RequiredSuffix      *string         `toml:"required_suffix"`
	ExclusionSubstrings []string        `toml:"exclusion_substrings"`
	Classification      *Classification `toml:"classification"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found, using environment variables only")
	}

	transport := strings.ToLower(getEnv("TRANSPORT", TransportSFTP))

	port, err := getEnvInt("PORT", DefaultPort(transport))
	if err != nil {
		return nil, err
	}
	timeout, err := getEnvInt("DIAL_TIMEOUT", 30)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Transport:   transport,
		Host:        getEnv("HOST", ""),
		Port:        port,
		Username:    getEnv("USERNAME", ""),
		Password:    getEnv("PASSWORD", ""),
		KeyFile:     getEnv("KEY_FILE", "id_rsa"),
		Passphrase:  getEnv("KEY_PASSPHRASE", ""),
		KnownHosts:  getEnv("KNOWN_HOSTS", ""),
		DialTimeout: time.Duration(timeout) * time.Second,

		RemoteDir: getEnv("REMOTE_DIR", ""),
		LocalDirA: getEnv("LOCAL_DIR_A", ""),
		LocalDirB: getEnv("LOCAL_DIR_B", ""),

		ApiURL:     getEnv("API_URL", ""),
		AccessKey:  getEnv("ACCESS_KEY", ""),
		SecretKey:  getEnv("SECRET_KEY", ""),
		BucketName: getEnv("BUCKET_NAME", ""),
		Region:     getEnv("REGION", ""),

		FTPTLS:                strings.ToLower(getEnv("FTP_TLS", "none")),
		FTPInsecureSkipVerify: getEnv("FTP_INSECURE_SKIP_VERIFY", "") == "true",

		ProgressStyle: getEnv("PROGRESS_STYLE", "line"),
		CriteriaFile:  getEnv("CRITERIA_FILE", ""),

		Criteria: models.SelectionCriteria{
			DatePrefixFormat:    getEnv("DATE_PREFIX_FORMAT", "2006-01-02"),
			NamePatterns:        getEnvList("NAME_PATTERNS"),
			RequiredSuffix:      getEnv("REQUIRED_SUFFIX", ".csv"),
			ExclusionSubstrings: getEnvList("EXCLUDE_SUBSTRINGS", "NãoPegar"),
		},
		Classification: Classification{
			MarkerA: getEnv("CLASS_A_MARKER", ""),
			PrefixA: getEnv("CLASS_A_PREFIX", "Arquivo1"),
			PrefixB: getEnv("CLASS_B_PREFIX", "Arquivo2"),
		},
	}

	if config.CriteriaFile != "" {
		if err := config.applyCriteriaFile(config.CriteriaFile); err != nil {
			return nil, err
		}
	}

	return config, nil
}

func (c *Config) applyCriteriaFile(path string) error {
	var file criteriaFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return fmt.Errorf("%w: criteria file %s: %w", models.ErrConfig, path, err)
	}

	if file.DatePrefixFormat != nil {
		c.Criteria.DatePrefixFormat = *file.DatePrefixFormat
	}
	if file.NamePatterns != nil {
		c.Criteria.NamePatterns = file.NamePatterns
	}
	if file.RequiredSuffix != nil {
		c.Criteria.RequiredSuffix = *file.RequiredSuffix
	}
	if file.ExclusionSubstrings != nil {
		c.Criteria.ExclusionSubstrings = file.ExclusionSubstrings
	}
	if cl := file.Classification; cl != nil {
		if cl.MarkerA != "" {
			c.Classification.MarkerA = cl.MarkerA
		}
		if cl.PrefixA != "" {
			c.Classification.PrefixA = cl.PrefixA
		}
		if cl.PrefixB != "" {
			c.Classification.PrefixB = cl.PrefixB
		}
	}
	return nil
}

// ValidateRemote checks what is needed to connect and select files.
func (c *Config) ValidateRemote() error {
	var missing []string
	require := func(name, value string) {
		if value == "" {
			missing = append(missing, name)
		}
	}

	switch c.Transport {
	case TransportSFTP:
		require("HOST", c.Host)
		require("USERNAME", c.Username)
		require("REMOTE_DIR", c.RemoteDir)
		if c.KeyFile == "" && c.Password == "" {
			missing = append(missing, "KEY_FILE or PASSWORD")
		}
	case TransportFTP:
		require("HOST", c.Host)
		require("USERNAME", c.Username)
		require("REMOTE_DIR", c.RemoteDir)
		if c.FTPTLS != "none" && c.FTPTLS != "explicit" && c.FTPTLS != "implicit" {
			return fmt.Errorf("%w: FTP_TLS must be none, explicit or implicit, got %q", models.ErrConfig, c.FTPTLS)
		}
	case TransportS3:
		require("BUCKET_NAME", c.BucketName)
		require("REGION", c.Region)
	default:
		return fmt.Errorf("%w: unknown transport %q", models.ErrConfig, c.Transport)
	}

	if len(c.Criteria.NamePatterns) == 0 {
		missing = append(missing, "NAME_PATTERNS")
	}
	return missingError(missing)
}

// Validate checks that a fetch run has everything it needs.
func (c *Config) Validate() error {
	if err := c.ValidateRemote(); err != nil {
		return err
	}

	var missing []string
	for name, value := range map[string]string{
		"LOCAL_DIR_A":    c.LocalDirA,
		"LOCAL_DIR_B":    c.LocalDirB,
		"CLASS_A_MARKER": c.Classification.MarkerA,
	} {
		if value == "" {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	if err := missingError(missing); err != nil {
		return err
	}

	if filepath.Clean(c.LocalDirA) == filepath.Clean(c.LocalDirB) &&
		c.Classification.PrefixA == c.Classification.PrefixB {
		return fmt.Errorf("%w: LOCAL_DIR_A and LOCAL_DIR_B are the same directory, so CLASS_A_PREFIX and CLASS_B_PREFIX must differ", models.ErrConfig)
	}
	return nil
}

func missingError(missing []string) error {
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: missing %s", models.ErrConfig, strings.Join(missing, ", "))
}

func DefaultPort(transport string) int {
	if transport == TransportFTP {
		return 21
	}
	return 22
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer: %w", models.ErrConfig, key, err)
	}
	return n, nil
}

// getEnvList splits a comma-separated variable, dropping empty items.
func getEnvList(key string, defaultValues ...string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValues
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
