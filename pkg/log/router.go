package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// sink 로그가 기록되는 출력 한 갈래입니다.
type sink struct {
	name   string
	w      io.Writer
	accept func(Level) bool

	// optional 쓰기 실패를 호출자에게 전달하지 않는 출력(콘솔)
	optional bool
}

var (
	acceptAll      = func(Level) bool { return true }
	acceptMain     = func(l Level) bool { return l <= InfoLevel }
	acceptCritical = func(l Level) bool { return l <= ErrorLevel }
	acceptVerbose  = func(l Level) bool { return l >= DebugLevel }
)

// router 로그 레벨에 따라 엔트리를 콘솔과 로그 파일(main, critical, verbose)로 나눠 기록하는 logrus Hook입니다.
//
// Debug 이하 레벨은 verbose 파일에만 남고 main 파일로는 가지 않습니다.
// Close 이후의 로그는 버려지며, router가 연 파일도 함께 닫힙니다.
type router struct {
	formatter logrus.Formatter
	sinks     []sink

	// files Close에서 닫아야 할 로그 파일
	files []io.Closer

	mu     sync.RWMutex
	closed bool
}

func (r *router) addSink(name string, w io.Writer, accept func(Level) bool) {
	r.sinks = append(r.sinks, sink{name: name, w: w, accept: accept})
}

func (r *router) addFile(name string, w io.WriteCloser, accept func(Level) bool) {
	r.addSink(name, w, accept)
	r.files = append(r.files, w)
}

func (r *router) addConsole(w io.Writer) {
	r.sinks = append(r.sinks, sink{name: "console", w: w, accept: acceptAll, optional: true})
}

func (r *router) Levels() []Level {
	return logrus.AllLevels
}

func (r *router) Fire(entry *Entry) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil
	}

	msg, err := r.formatter.Format(entry)
	if err != nil {
		return err
	}

	var firstErr error
	for _, s := range r.sinks {
		if !s.accept(entry.Level) {
			continue
		}
		if _, err := s.w.Write(msg); err != nil {
			fmt.Fprintf(os.Stderr, "[LOG] %s 로그 쓰기 실패: %v\n", s.name, err)
			if !s.optional && firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

// Close 더 이상 로그를 받지 않도록 막은 뒤 로그 파일을 모두 닫습니다. 여러 번 호출해도 안전합니다.
func (r *router) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	var errs error
	for _, f := range r.files {
		if err := f.Close(); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return errs
}

// discardFormatter logrus 기본 출력 경로용 포맷터입니다. 실제 포맷팅은 router가 하므로 아무것도 만들지 않습니다.
type discardFormatter struct{}

func (discardFormatter) Format(*logrus.Entry) ([]byte, error) {
	return nil, nil
}
