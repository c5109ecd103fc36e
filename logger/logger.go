// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2017 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package logger provides a subsystem-tagged logger registry shared by
// every process in the consensus core, backed by logrus with file
// rotation via jrick/logrotate.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jrick/logrotate/rotator"
	"github.com/sirupsen/logrus"
)

// logWriter implements an io.Writer that outputs to both standard output
// and the write-end pipe of an initialized log rotator.
type logWriter struct{}

func (logWriter) Write(p []byte) (n int, err error) {
	if initiated {
		os.Stdout.Write(p)
		LogRotator.Write(p)
	}
	return len(p), nil
}

// backendLogger is the shared logrus instance every subsystem logger
// derives its *logrus.Entry from. It must not be used before
// InitLogRotators runs, or log lines are dropped silently by logWriter.
var backendLogger = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(logWriter{})
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	return l
}()

// LogRotator is the rotating log file output. It should be closed on
// application shutdown.
var LogRotator *rotator.Rotator

var initiated = false

// SubsystemTags is an enum of all subsystem tags.
var SubsystemTags = struct {
	CNSS, // consensus state manager / segment tree
	VALD, // block and transaction validators
	MMGR, // mempool manager
	BBLD, // block builder
	DIFF, // difficulty manager
	UPGD, // upgrade manager
	CHKP, // checkpoints
	PROT, // protocol / flowcontext
	RPCS, // RPC surface
	DBAC, // db access
	CNFG string // config / currency
}{
	CNSS: "CNSS",
	VALD: "VALD",
	MMGR: "MMGR",
	BBLD: "BBLD",
	DIFF: "DIFF",
	UPGD: "UPGD",
	CHKP: "CHKP",
	PROT: "PROT",
	RPCS: "RPCS",
	DBAC: "DBAC",
	CNFG: "CNFG",
}

var subsystemLoggers = map[string]*logrus.Entry{
	SubsystemTags.CNSS: backendLogger.WithField("subsystem", SubsystemTags.CNSS),
	SubsystemTags.VALD: backendLogger.WithField("subsystem", SubsystemTags.VALD),
	SubsystemTags.MMGR: backendLogger.WithField("subsystem", SubsystemTags.MMGR),
	SubsystemTags.BBLD: backendLogger.WithField("subsystem", SubsystemTags.BBLD),
	SubsystemTags.DIFF: backendLogger.WithField("subsystem", SubsystemTags.DIFF),
	SubsystemTags.UPGD: backendLogger.WithField("subsystem", SubsystemTags.UPGD),
	SubsystemTags.CHKP: backendLogger.WithField("subsystem", SubsystemTags.CHKP),
	SubsystemTags.PROT: backendLogger.WithField("subsystem", SubsystemTags.PROT),
	SubsystemTags.RPCS: backendLogger.WithField("subsystem", SubsystemTags.RPCS),
	SubsystemTags.DBAC: backendLogger.WithField("subsystem", SubsystemTags.DBAC),
	SubsystemTags.CNFG: backendLogger.WithField("subsystem", SubsystemTags.CNFG),
}

// InitLogRotators initializes the logging rotator to write logs to
// logFile, rolling files in the same directory. Must be called before any
// subsystem logger is used.
func InitLogRotators(logFile string) {
	initiated = true
	LogRotator = initLogRotator(logFile)
}

func initLogRotator(logFile string) *rotator.Rotator {
	logDir, _ := filepath.Split(logFile)
	err := os.MkdirAll(logDir, 0700)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log directory: %s\n", err)
		os.Exit(1)
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create file rotator: %s\n", err)
		os.Exit(1)
	}
	return r
}

// SetLogLevel sets the logging level through the given subsystem's logger.
// Every subsystem logger writes through the one shared backend, so the
// level applies to all subsystems, not to the named one alone. Invalid
// subsystems are ignored.
func SetLogLevel(subsystemID string, logLevel string) {
	entry, ok := subsystemLoggers[subsystemID]
	if !ok {
		return
	}
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	entry.Logger.SetLevel(level)
}

// SetLogLevels sets the log level for every subsystem logger.
func SetLogLevels(logLevel string) {
	for subsystemID := range subsystemLoggers {
		SetLogLevel(subsystemID, logLevel)
	}
}

// Get returns the logger for the given subsystem tag.
func Get(tag string) (entry *logrus.Entry, ok bool) {
	entry, ok = subsystemLoggers[tag]
	return
}

// SupportedSubsystems returns a sorted slice of the supported subsystem
// tags.
func SupportedSubsystems() []string {
	subsystems := make([]string, 0, len(subsystemLoggers))
	for subsysID := range subsystemLoggers {
		subsystems = append(subsystems, subsysID)
	}
	sort.Strings(subsystems)
	return subsystems
}

// ParseAndSetDebugLevels parses a debug-level spec, either a bare level
// applied to every subsystem or a comma-separated list of
// SUBSYSTEM=level pairs.
func ParseAndSetDebugLevels(debugLevel string) error {
	if !strings.Contains(debugLevel, ",") && !strings.Contains(debugLevel, "=") {
		if !validLogLevel(debugLevel) {
			return fmt.Errorf("the specified debug level [%s] is invalid", debugLevel)
		}
		SetLogLevels(debugLevel)
		return nil
	}

	for _, logLevelPair := range strings.Split(debugLevel, ",") {
		if !strings.Contains(logLevelPair, "=") {
			return fmt.Errorf("the specified debug level contains an invalid subsystem/level pair [%s]", logLevelPair)
		}

		fields := strings.Split(logLevelPair, "=")
		subsysID, logLevel := fields[0], fields[1]

		if _, exists := Get(subsysID); !exists {
			return fmt.Errorf("the specified subsystem [%s] is invalid -- supported subsystems %s",
				subsysID, strings.Join(SupportedSubsystems(), ", "))
		}

		if !validLogLevel(logLevel) {
			return fmt.Errorf("the specified debug level [%s] is invalid", logLevel)
		}

		SetLogLevel(subsysID, logLevel)
	}

	return nil
}

func validLogLevel(logLevel string) bool {
	_, err := logrus.ParseLevel(logLevel)
	return err == nil
}
