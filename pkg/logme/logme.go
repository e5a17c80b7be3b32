package logme

import (
	"io"
	"log"
	"os"
)

var infoLogger = log.New(os.Stdout, "[INFO] ", log.Ldate|log.Ltime|log.Lshortfile)
var warnLogger = log.New(os.Stdout, "[WARN] ", log.Ldate|log.Ltime|log.Lshortfile)
var debugLogger = log.New(os.Stdout, "[DEBUG] ", log.Ldate|log.Ltime|log.Lshortfile)
var errorLogger = log.New(os.Stderr, "[ERROR] ", log.Ldate|log.Ltime|log.Lshortfile)

var isDebugMode bool = os.Getenv("DEBUG") == "1" || os.Getenv("DEBUG") == "true"
var silentMode bool = os.Getenv("SILENT") == "1" || os.Getenv("GITHUB_ACTIONS") == "true"

// SetOutput sends every level to w. Used by tests to capture warnings.
func SetOutput(w io.Writer) {
	infoLogger.SetOutput(w)
	warnLogger.SetOutput(w)
	debugLogger.SetOutput(w)
	errorLogger.SetOutput(w)
}

func SetDebug(enabled bool) {
	isDebugMode = enabled
}

func SetSilent(enabled bool) {
	silentMode = enabled
}

func DebugF(msg string, args ...interface{}) {
	if isDebugMode {
		debugLogger.Printf(msg, args...)
	}
}

func Debugln(args ...interface{}) {
	if isDebugMode {
		debugLogger.Println(args...)
	}
}

func InfoF(msg string, args ...interface{}) {
	if !silentMode {
		infoLogger.Printf(msg, args...)
	}
}

func Infoln(arg ...interface{}) {
	if !silentMode {
		infoLogger.Println(arg...)
	}
}

// WarnF reports a recoverable problem: the run keeps going.
func WarnF(msg string, args ...interface{}) {
	if !silentMode {
		warnLogger.Printf(msg, args...)
	}
}

func Warnln(arg ...interface{}) {
	if !silentMode {
		warnLogger.Println(arg...)
	}
}

func ErrorF(msg string, args ...interface{}) {
	if !silentMode {
		errorLogger.Printf(msg, args...)
	}
}

func Errorln(arg ...interface{}) {
	if !silentMode {
		errorLogger.Println(arg...)
	}
}

func FatalLn(arg ...interface{}) {
	errorLogger.Fatalln(arg...)
}

func FatalF(msg string, args ...interface{}) {
	errorLogger.Fatalf(msg, args...)
}
