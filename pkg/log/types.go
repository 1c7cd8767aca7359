package log

import (
	"github.com/sirupsen/logrus"
)

// Level 로그 레벨 (logrus.Level)
type Level = logrus.Level

// 릴레이가 사용하는 로그 레벨
const (
	ErrorLevel Level = logrus.ErrorLevel
	WarnLevel  Level = logrus.WarnLevel
	InfoLevel  Level = logrus.InfoLevel

	// DebugLevel 이하의 로그는 verbose 로그 파일에만 기록됩니다.
	DebugLevel Level = logrus.DebugLevel
	TraceLevel Level = logrus.TraceLevel
)

type (
	Fields = logrus.Fields
	Entry  = logrus.Entry
	Logger = logrus.Logger
)
