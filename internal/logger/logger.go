package logger

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"GtnPortal/internal/config"
)

// LoggerService owns the process logger. It writes zap entries to a
// size-rotated file in folderPath, zips files older than retentionDays and
// optionally mirrors everything to stderr.
type LoggerService struct {
	Config        map[string]interface{}
	file          *os.File
	mu            sync.Mutex
	stopCh        chan struct{}
	wg            sync.WaitGroup
	currentLog    string
	maxFileBytes  int64
	retentionDays int
	folderPath    string
	level         string
	format        string
	console       bool
	zl            *zap.Logger
}

func NewLoggerService(cfg map[string]interface{}) *LoggerService {
	if cfg == nil {
		cfg = map[string]interface{}{}
	}
	env := config.Load()

	folder, _ := cfg["folder_path"].(string)
	if folder == "" {
		folder = env.LogFolder
	}
	level, _ := cfg["level"].(string)
	if level == "" {
		level = env.LogLevel
	}
	format, _ := cfg["format"].(string)
	if format == "" {
		format = env.LogFormat
	}
	console, ok := cfg["console"].(bool)
	if !ok {
		console = true
	}
	return &LoggerService{
		Config:        cfg,
		stopCh:        make(chan struct{}),
		maxFileBytes:  int64(toInt(cfg["max_file_mb"])) * 1024 * 1024,
		retentionDays: toInt(cfg["retention_days"]),
		folderPath:    folder,
		level:         level,
		format:        format,
		console:       console,
		zl:            zap.NewNop(),
	}
}

func (l *LoggerService) Name() string {
	return "logger"
}

func (l *LoggerService) Start() error {
	l.mu.Lock()
	if err := os.MkdirAll(l.folderPath, 0755); err != nil {
		l.mu.Unlock()
		return err
	}
	logFile := l.nextLogFileName()
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		l.mu.Unlock()
		return err
	}
	l.file = file
	l.currentLog = logFile
	l.mu.Unlock()

	cores := []zapcore.Core{zapcore.NewCore(encoder(l.format), zapcore.AddSync(l), parseLevel(l.level))}
	if l.console {
		cores = append(cores, zapcore.NewCore(encoder("console"), zapcore.Lock(os.Stderr), parseLevel(l.level)))
	}
	l.zl = zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	zap.ReplaceGlobals(l.zl)
	l.zl.Info("logger started", zap.String("file", logFile))

	l.wg.Add(1)
	go l.backgroundWorker()
	return nil
}

func (l *LoggerService) Stop() error {
	close(l.stopCh)
	l.wg.Wait()
	l.zl.Info("logger stopping")
	_ = l.zl.Sync()
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// Write lets the service act as the zap file sink across rotations.
func (l *LoggerService) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return len(p), nil
	}
	return l.file.Write(p)
}

// Sync flushes the current log file.
func (l *LoggerService) Sync() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	return l.file.Sync()
}

// Logger returns the zap logger built by Start.
func (l *LoggerService) Logger() *zap.Logger {
	return l.zl
}

// LogAudit records an audit entry.
func (l *LoggerService) LogAudit(msg string, fields ...zap.Field) {
	l.zl.Info(msg, append(fields, zap.Bool("audit", true))...)
}

func (l *LoggerService) nextLogFileName() string {
	timestamp := time.Now().Format("20060102_150405.000")
	return filepath.Join(l.folderPath, fmt.Sprintf("gtn_%s.log", timestamp))
}

func (l *LoggerService) rotateIfNeeded() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil || l.maxFileBytes <= 0 {
		return nil
	}
	info, err := l.file.Stat()
	if err != nil {
		return err
	}
	if info.Size() < l.maxFileBytes {
		return nil
	}
	newLog := l.nextLogFileName()
	file, err := os.OpenFile(newLog, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	l.file.Close()
	l.file = file
	l.currentLog = newLog
	return nil
}

func (l *LoggerService) backgroundWorker() {
	defer l.wg.Done()
	ticker := time.NewTicker(10 * time.Second)
	retentionTicker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	defer retentionTicker.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-ticker.C:
			if err := l.rotateIfNeeded(); err != nil {
				l.zl.Warn("log rotation failed", zap.Error(err))
			}
		case <-retentionTicker.C:
			l.zipAndCleanOldLogs(time.Now())
		}
	}
}

// zipAndCleanOldLogs moves .log files last modified before the retention
// cutoff into a dated zip archive. The active file is never touched.
func (l *LoggerService) zipAndCleanOldLogs(now time.Time) int {
	if l.retentionDays <= 0 {
		return 0
	}
	cutoff := now.AddDate(0, 0, -l.retentionDays)
	files, err := os.ReadDir(l.folderPath)
	if err != nil {
		return 0
	}

	l.mu.Lock()
	active := l.currentLog
	l.mu.Unlock()

	var old []string
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ".log" {
			continue
		}
		fullPath := filepath.Join(l.folderPath, f.Name())
		info, err := f.Info()
		if err != nil || info.ModTime().After(cutoff) || fullPath == active {
			continue
		}
		old = append(old, fullPath)
	}
	if len(old) == 0 {
		return 0
	}

	zipName := filepath.Join(l.folderPath, fmt.Sprintf("logs_%s.zip", now.Format("20060102_150405")))
	zipFile, err := os.Create(zipName)
	if err != nil {
		return 0
	}
	defer zipFile.Close()
	zipWriter := zip.NewWriter(zipFile)
	defer zipWriter.Close()

	archived := 0
	for _, path := range old {
		w, err := zipWriter.Create(filepath.Base(path))
		if err != nil {
			continue
		}
		src, err := os.Open(path)
		if err != nil {
			continue
		}
		_, err = io.Copy(w, src)
		src.Close()
		if err != nil {
			continue
		}
		os.Remove(path)
		archived++
	}
	return archived
}

var GlobalLogger *LoggerService

func SetGlobalLogger(l *LoggerService) {
	GlobalLogger = l
	if l != nil && l.zl != nil {
		zap.ReplaceGlobals(l.zl)
	}
}

// L returns the process logger; a no-op logger until one is installed.
func L() *zap.Logger {
	return zap.L()
}

// S returns the sugared process logger.
func S() *zap.SugaredLogger {
	return zap.S()
}

// New builds a standalone logger writing to w, for tools that do not run the
// service stack.
func New(level, format string, w io.Writer) *zap.Logger {
	core := zapcore.NewCore(encoder(format), zapcore.AddSync(w), parseLevel(level))
	return zap.New(core)
}

func encoder(format string) zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if format == "console" {
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(cfg)
	}
	return zapcore.NewJSONEncoder(cfg)
}

func parseLevel(s string) zapcore.Level {
	level, err := zapcore.ParseLevel(s)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

func toInt(v interface{}) int {
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case string:
		var parsed int
		if _, err := fmt.Sscanf(t, "%d", &parsed); err == nil {
			return parsed
		}
	}
	return 0
}

// Audit records msg on the installed logger service, or on the process logger
// before one is installed.
func Audit(msg string, fields ...zap.Field) {
	if GlobalLogger != nil {
		GlobalLogger.LogAudit(msg, fields...)
		return
	}
	zap.L().Info(msg, append(fields, zap.Bool("audit", true))...)
}
