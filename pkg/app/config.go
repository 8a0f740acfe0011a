package app

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/lk2023060901/xdooria-rotation/pkg/config"
)

// EnvPrefix 环境变量前缀，ROTATION_LOG_LEVEL 覆盖 log.level
const EnvPrefix = "ROTATION"

var (
	flagConfig  string
	flagLogPath string

	configPath string
)

// LoadManager 加载配置文件并解析到 target，返回的管理器可用于热更新
// 优先级：命令行 > 环境变量 > 配置文件 > 默认值
// 配置文件默认位于可执行文件同目录的 config.yaml，也可由 --config 或 ROTATION_CONFIG 指定
func LoadManager(target any, opts ...config.Option) (config.Manager, error) {
	dir, err := execDir()
	if err != nil {
		return nil, errors.Wrap(err, "failed to locate executable")
	}
	defaultLog := filepath.Join(dir, "logs", AppName+".log")
	registerFlags(filepath.Join(dir, "config.yaml"), defaultLog)

	path := resolveConfigPath()
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(config.ErrConfigFileNotFound, "%s", path)
	}
	configPath = path

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	v.SetDefault("log.output_path", defaultLog)
	v.SetDefault("log.enable_file", true)
	if pflag.CommandLine.Changed("log.path") {
		v.Set("log.output_path", flagLogPath)
	}

	mgr := config.NewManager(append([]config.Option{config.WithViper(v)}, opts...)...)
	if err := mgr.LoadFile(path); err != nil {
		return nil, err
	}
	if err := mgr.Unmarshal(target); err != nil {
		return nil, err
	}

	if logDir := filepath.Dir(v.GetString("log.output_path")); logDir != "" {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "failed to create log directory %s", logDir)
		}
	}
	return mgr, nil
}

func registerFlags(defaultConfig, defaultLog string) {
	if pflag.Lookup("config") == nil {
		pflag.StringVarP(&flagConfig, "config", "c", defaultConfig, "path to config file")
	}
	if pflag.Lookup("log.path") == nil {
		pflag.StringVar(&flagLogPath, "log.path", defaultLog, "log file path")
	}
	if !pflag.Parsed() {
		pflag.Parse()
	}
}

func resolveConfigPath() string {
	if !pflag.CommandLine.Changed("config") {
		if env := os.Getenv(EnvPrefix + "_CONFIG"); env != "" {
			return env
		}
	}
	return flagConfig
}

// execDir 可执行文件所在目录，解析符号链接
func execDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// GetConfigPath 实际加载的配置文件路径
func GetConfigPath() string {
	return configPath
}
