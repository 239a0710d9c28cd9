package logger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestInitLogger(t *testing.T) {
	tmpDir := t.TempDir()
	logFile := filepath.Join(tmpDir, "test.log")

	err := NewBuilder().
		AddLevelFile(INFO, logFile).
		SetMaxSize(10).
		SetMaxBackups(3).
		SetMaxAge(1).
		SetLevel(DEBUG).
		EnableCompression(false).
		EnableConsoleOutput(false).
		Build()
	if err != nil {
		t.Fatalf("初始化日志失败: %v", err)
	}
	defer Close()

	Info().Msg("init test")

	if _, err := os.Stat(logFile); os.IsNotExist(err) {
		t.Error("日志文件未创建")
	}
}

func TestStructuredLogging(t *testing.T) {
	tmpDir := t.TempDir()
	logFile := filepath.Join(tmpDir, "test.log")

	if err := NewBuilder().AddLevelFile(INFO, logFile).SetLevel(DEBUG).Build(); err != nil {
		t.Fatalf("初始化日志失败: %v", err)
	}
	defer Close()

	Info().
		Str("symbol", "SOL").
		Float64("short_liquidity", 1.5e6).
		Dur("ttl", 5*time.Minute).
		Msg("snapshot loaded")

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("读取日志文件失败: %v", err)
	}
	if !strings.Contains(string(content), "snapshot loaded") {
		t.Errorf("日志内容缺失: %s", content)
	}
}

func TestErrorLevelFile(t *testing.T) {
	tmpDir := t.TempDir()
	infoFile := filepath.Join(tmpDir, "info.log")
	errorFile := filepath.Join(tmpDir, "error.log")

	err := NewBuilder().
		AddLevelFile(INFO, infoFile).
		AddLevelFile(ERROR, errorFile).
		SetLevel(DEBUG).
		Build()
	if err != nil {
		t.Fatalf("初始化日志失败: %v", err)
	}
	defer Close()

	Err(errors.New("upstream down")).Msg("fetch failed")
	Warn().Msg("warn goes to info file")

	errContent, err := os.ReadFile(errorFile)
	if err != nil {
		t.Fatalf("读取错误日志文件失败: %v", err)
	}
	if !strings.Contains(string(errContent), "fetch failed") {
		t.Error("错误日志未写入 error 文件")
	}

	infoContent, err := os.ReadFile(infoFile)
	if err != nil {
		t.Fatalf("读取日志文件失败: %v", err)
	}
	if strings.Contains(string(infoContent), "fetch failed") {
		t.Error("已配置 ERROR 文件时 error 日志不应写入 info 文件")
	}
	if !strings.Contains(string(infoContent), "warn goes to info file") {
		t.Error("未配置的 WARN 应降级写入 info 文件")
	}
}

func TestLevelFiltering(t *testing.T) {
	tmpDir := t.TempDir()
	logFile := filepath.Join(tmpDir, "test.log")

	if err := NewBuilder().AddLevelFile(INFO, logFile).SetLevel(WARN).Build(); err != nil {
		t.Fatalf("初始化日志失败: %v", err)
	}
	defer Close()

	Debug().Msg("debug hidden")
	Info().Msg("info hidden")
	Warn().Msg("warn shown")

	content, _ := os.ReadFile(logFile)
	if strings.Contains(string(content), "hidden") {
		t.Errorf("低于 WARN 的日志不应写入: %s", content)
	}
	if !strings.Contains(string(content), "warn shown") {
		t.Error("WARN 日志缺失")
	}
}

func TestCompatMethods(t *testing.T) {
	tmpDir := t.TempDir()
	logFile := filepath.Join(tmpDir, "test.log")

	if err := NewBuilder().AddLevelFile(INFO, logFile).SetLevel(DEBUG).Build(); err != nil {
		t.Fatalf("初始化日志失败: %v", err)
	}
	defer Close()

	Infof("loaded %d records", 42)
	Warnf("plain message")

	content, _ := os.ReadFile(logFile)
	if !strings.Contains(string(content), "loaded 42 records") {
		t.Errorf("Infof 格式化失败: %s", content)
	}
	if !strings.Contains(string(content), "plain message") {
		t.Error("Warnf 无参数调用失败")
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.LevelFiles.IsEmpty() {
		t.Error("默认 LevelFiles 不应为空")
	}
	if config.Level != INFO {
		t.Errorf("默认 Level 错误: %s", config.Level)
	}
	if !config.LevelFiles.HasLevel(ERROR) || !config.LevelFiles.HasLevel(INFO) {
		t.Error("默认 LevelFiles 应包含 ERROR 和 INFO")
	}

	errorPath, ok := config.LevelFiles.GetPath(ERROR)
	if !ok || errorPath != "logs/err.log" {
		t.Errorf("默认 ERROR 路径错误: %s", errorPath)
	}
}

func TestAddLevelFileReplacesDefaults(t *testing.T) {
	b := NewBuilder().AddLevelFile(WARN, "a.log")

	if b.config.LevelFiles.HasLevel(ERROR) {
		t.Error("AddLevelFile 后不应保留默认文件")
	}
	if len(b.config.LevelFiles) != 1 {
		t.Errorf("LevelFiles 数量错误: %d", len(b.config.LevelFiles))
	}
}
