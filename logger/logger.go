package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	AppLogger    *log.Logger
	AccessLogger *log.Logger
	WarnLogger   *log.Logger
	ErrorLogger  *log.Logger

	mu            sync.Mutex
	logLevel      string
	appLogFile    *os.File
	accessLogFile *os.File
	initialized   bool
)

// levels orders the accepted level names from most to least verbose.
var levels = map[string]int{"DEBUG": 0, "INFO": 1, "WARN": 2, "ERROR": 3}

func enabled(level string) bool {
	current, ok := levels[logLevel]
	if !ok {
		current = levels["INFO"]
	}
	return levels[level] >= current
}

// openLogFile opens path for appending, creating its directory. On failure the
// returned writer is io.Discard and the label reads "(discarded)".
func openLogFile(path, kind string) (*os.File, io.Writer, string) {
	if path == "" {
		return nil, io.Discard, "(discarded)"
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		ErrorLogger.Printf("Failed to create %s log directory %s: %v. %s logs will be discarded.", kind, dir, err, kind)
		return nil, io.Discard, "(discarded)"
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
	if err != nil {
		ErrorLogger.Printf("Failed to open %s log file %s: %v. %s logs will be discarded.", kind, path, err, kind)
		return nil, io.Discard, "(discarded)"
	}
	return f, f, path
}

// InitGlobalLoggers (re)initializes the application and access loggers.
// Errors always go to stderr; all other output goes to the log files.
func InitGlobalLoggers(appLogPath, accessLogPath, level string) error {
	mu.Lock()
	defer mu.Unlock()

	level = strings.ToUpper(level)
	if level == "" {
		level = "INFO"
	}
	if _, ok := levels[level]; !ok {
		return fmt.Errorf("unknown log level %q", level)
	}
	if initialized && appLogFile != nil && accessLogFile != nil && level == logLevel {
		return nil
	}
	closeFiles()

	logLevel = level
	ErrorLogger = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)

	var appWriter, accessWriter io.Writer
	var appLabel, accessLabel string
	appLogFile, appWriter, appLabel = openLogFile(appLogPath, "App")
	accessLogFile, accessWriter, accessLabel = openLogFile(accessLogPath, "Access")

	AppLogger = log.New(appWriter, "APP: ", log.Ldate|log.Ltime|log.Lshortfile)
	WarnLogger = log.New(appWriter, "WARN: ", log.Ldate|log.Ltime|log.Lshortfile)
	AccessLogger = log.New(accessWriter, "ACCESS: ", log.Ldate|log.Ltime)

	if !initialized {
		AppLogger.Printf("App logger initialized. Log level: %s. Output file: %s", logLevel, appLabel)
		AccessLogger.Printf("Access logger initialized. Output file: %s", accessLabel)
	}
	initialized = true
	return nil
}

func Info(format string, v ...interface{}) {
	if AppLogger != nil && enabled("INFO") {
		AppLogger.Output(2, fmt.Sprintf(format, v...))
	}
}

func Debug(format string, v ...interface{}) {
	if AppLogger != nil && enabled("DEBUG") {
		AppLogger.Output(2, fmt.Sprintf(format, v...))
	}
}

func Warn(format string, v ...interface{}) {
	if WarnLogger != nil && enabled("WARN") {
		WarnLogger.Output(2, fmt.Sprintf(format, v...))
	}
}

func Error(format string, v ...interface{}) {
	message := fmt.Sprintf(format, v...)
	if ErrorLogger != nil {
		ErrorLogger.Output(2, message)
	}
	if AppLogger != nil && appLogFile != nil {
		AppLogger.Output(2, message)
	}
}

func Fatal(format string, v ...interface{}) {
	message := fmt.Sprintf(format, v...)
	if ErrorLogger != nil {
		ErrorLogger.Fatal(message)
	} else {
		log.Fatal(message)
	}
}

// Access writes one line to the HTTP access log regardless of level.
func Access(format string, v ...interface{}) {
	if AccessLogger != nil {
		AccessLogger.Printf(format, v...)
	}
}

func closeFiles() {
	if appLogFile != nil {
		appLogFile.Close()
		appLogFile = nil
	}
	if accessLogFile != nil {
		accessLogFile.Close()
		accessLogFile = nil
	}
}

func CloseLogFiles() {
	mu.Lock()
	defer mu.Unlock()
	if appLogFile != nil {
		AppLogger.Println("Closing app log file.")
	}
	closeFiles()
	AppLogger, WarnLogger, AccessLogger = nil, nil, nil
	initialized = false // Allow re-initialization (e.g. tests)
}
