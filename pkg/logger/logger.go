package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logMu       sync.Mutex
	fileWriters map[string]*lumberjack.Logger
	TimeFormat  = "2006-01-02 15:04:05"
)

// initLogger 按配置创建文件/控制台输出并替换全局 logger
func initLogger(config Config) error {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	setLogLevel(config.Level)

	if config.LevelFiles.IsEmpty() && !config.Console {
		config.LevelFiles = LevelFiles{
			{Level: INFO, Path: "logs/info.log"},
		}
	}

	for _, filePath := range config.LevelFiles.GetPaths() {
		if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
			return err
		}
	}

	// 已配置等级的位掩码，用于未配置等级的降级写入
	var configured uint8
	for _, entry := range config.LevelFiles {
		configured |= 1 << parseLevel(entry.Level)
	}

	writers := make([]io.Writer, 0, len(config.LevelFiles)+1)
	files := make(map[string]*lumberjack.Logger, len(config.LevelFiles))

	for _, entry := range config.LevelFiles {
		lj := &lumberjack.Logger{
			Filename:   entry.Path,
			MaxSize:    config.MaxSize,
			MaxBackups: config.MaxBackups,
			MaxAge:     config.MaxAge,
			Compress:   config.Compress,
		}
		files[entry.Level] = lj

		writers = append(writers, &levelFilterWriter{
			level:      parseLevel(entry.Level),
			configured: configured,
			Writer: &zerolog.ConsoleWriter{
				Out:        lj,
				TimeFormat: TimeFormat,
				NoColor:    true,
			},
		})
	}

	if config.Console {
		writers = append(writers, &zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: TimeFormat,
		})
	}

	logMu.Lock()
	defer logMu.Unlock()

	closeFiles()
	fileWriters = files
	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Caller().Logger()

	return nil
}

// levelFilterWriter 只写入匹配等级的日志
// 未单独配置文件的等级落入 INFO 文件，FATAL 未配置时写入 ERROR 文件
type levelFilterWriter struct {
	level      zerolog.Level
	configured uint8
	io.Writer
}

func (w *levelFilterWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level == w.level {
		return w.Writer.Write(p)
	}

	unconfigured := level >= 0 && w.configured&(1<<level) == 0
	switch {
	case w.level == zerolog.InfoLevel && unconfigured && level != zerolog.FatalLevel:
		return w.Writer.Write(p)
	case w.level == zerolog.ErrorLevel && level == zerolog.FatalLevel && unconfigured:
		return w.Writer.Write(p)
	}
	return len(p), nil
}

func parseLevel(levelName string) zerolog.Level {
	switch levelName {
	case DEBUG, "DEBUG":
		return zerolog.DebugLevel
	case WARN, "WARN":
		return zerolog.WarnLevel
	case ERROR, "ERROR":
		return zerolog.ErrorLevel
	case FATAL, "FATAL":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

func setLogLevel(level string) {
	zerolog.SetGlobalLevel(parseLevel(level))
}

// closeFiles 调用方需持有 logMu
func closeFiles() {
	for levelName, lj := range fileWriters {
		if err := lj.Close(); err != nil {
			log.Logger.Err(err).Str("level", levelName).Msg("failed to close log file")
		}
	}
	fileWriters = nil
}

// L 返回全局 logger
func L() zerolog.Logger {
	return log.Logger
}

// Component 返回带 component 字段的子 logger
func Component(name string) zerolog.Logger {
	return log.Logger.With().Str("component", name).Logger()
}

func Info() *zerolog.Event {
	return log.Logger.Info()
}

func Debug() *zerolog.Event {
	return log.Logger.Debug()
}

func Error() *zerolog.Event {
	return log.Logger.Error()
}

func Warn() *zerolog.Event {
	return log.Logger.Warn()
}

func Fatal() *zerolog.Event {
	return log.Logger.Fatal()
}

// Err 直接记录错误
func Err(err error) *zerolog.Event {
	return log.Logger.Err(err)
}

// Close 关闭所有日志文件
func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	closeFiles()
}
