package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"runtime"
	"strconv"
	"strings"
	"time"
)

const (
	DEBUG = iota
	INFO
	WARN
	ERROR
)

var levelName = map[int][]byte{
	DEBUG: []byte("DEBUG"),
	INFO:  []byte("INFO"),
	WARN:  []byte("WARN"),
	ERROR: []byte("ERROR"),
}

func ParseLevel(level string) int {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN":
		return WARN
	case "ERROR":
		return ERROR
	default:
		panic(fmt.Sprintf("unknown log level: %v", level))
	}
}

var (
	red     = []byte{27, 91, 51, 49, 109}
	green   = []byte{27, 91, 51, 50, 109}
	yellow  = []byte{27, 91, 51, 51, 109}
	blue    = []byte{27, 91, 51, 52, 109}
	magenta = []byte{27, 91, 51, 53, 109}
	cyan    = []byte{27, 91, 51, 54, 109}
	reset   = []byte{27, 91, 48, 109}
)

const (
	DefaultFileMaxSize = 10485760
	logChanSize        = 1000
)

type Config struct {
	AppName      string
	Level        int
	TrackLine    bool
	EnableFile   bool
	FileMaxSize  int32
	DisableColor bool
	EnableJson   bool
}

type logEntry struct {
	time      time.Time
	level     int
	msg       []byte
	fileName  string
	funcName  string
	line      int
	trackLine bool
}

type Logger struct {
	logChan   chan *logEntry
	closeChan chan struct{}
	logFile   *os.File
}

var (
	LOG  *Logger = nil
	CONF *Config = nil
)

func InitLogger(config *Config) {
	if config == nil {
		config = &Config{
			AppName:   "application",
			Level:     DEBUG,
			TrackLine: true,
		}
	}
	CONF = config
	if CONF.FileMaxSize == 0 {
		CONF.FileMaxSize = DefaultFileMaxSize
	}
	LOG = &Logger{
		logChan:   make(chan *logEntry, logChanSize),
		closeChan: make(chan struct{}),
	}
	go LOG.doLog()
}

func CloseLogger() {
	LOG.closeChan <- struct{}{}
	<-LOG.closeChan
}

func (l *Logger) doLog() {
	var buf bytes.Buffer
	timeBuf := make([]byte, 0, 64)
	exit := false
	exitCountDown := 0
	for {
		select {
		case <-l.closeChan:
			exit = true
			exitCountDown = len(l.logChan)
		case entry := <-l.logChan:
			if !CONF.DisableColor {
				buf.Write(cyan)
			}
			buf.WriteByte('[')
			buf.Write(entry.time.AppendFormat(timeBuf, "2006-01-02 15:04:05.000"))
			buf.WriteByte(']')
			if !CONF.DisableColor {
				buf.Write(reset)
			}
			buf.WriteByte(' ')

			if !CONF.DisableColor {
				switch entry.level {
				case DEBUG:
					buf.Write(blue)
				case INFO:
					buf.Write(green)
				case WARN:
					buf.Write(yellow)
				case ERROR:
					buf.Write(red)
				}
			}
			buf.WriteByte('[')
			buf.Write(levelName[entry.level])
			buf.WriteByte(']')
			if !CONF.DisableColor {
				buf.Write(reset)
			}
			buf.WriteByte(' ')

			if !CONF.DisableColor && entry.level == ERROR {
				buf.Write(red)
				buf.Write(entry.msg)
				buf.Write(reset)
			} else {
				buf.Write(entry.msg)
			}

			if entry.trackLine {
				buf.WriteByte(' ')
				if !CONF.DisableColor {
					buf.Write(magenta)
				}
				buf.WriteByte('[')
				buf.WriteString(entry.fileName)
				buf.WriteByte(':')
				buf.WriteString(strconv.Itoa(entry.line))
				buf.WriteByte(' ')
				buf.WriteString(entry.funcName)
				buf.WriteString("()")
				buf.WriteByte(']')
				if !CONF.DisableColor {
					buf.Write(reset)
				}
			}

			buf.WriteByte('\n')
			l.writeLog(buf.Bytes())
			buf.Reset()
			timeBuf = timeBuf[0:0]
			if exit {
				exitCountDown--
			}
		}
		if exit && exitCountDown == 0 {
			LOG.closeChan <- struct{}{}
			return
		}
	}
}

func (l *Logger) writeLog(logData []byte) {
	_, _ = os.Stderr.Write(logData)
	if CONF.EnableFile {
		l.writeLogFile(logData)
	}
}

func (l *Logger) writeLogFile(logData []byte) {
	fileName := "./log/" + CONF.AppName + ".log"
	if l.logFile == nil {
		file, err := os.OpenFile(fileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			_, _ = os.Stderr.WriteString(fmt.Sprintf("open log file error: %v\n", err))
			return
		}
		l.logFile = file
	}
	fileStat, err := l.logFile.Stat()
	if err != nil {
		_, _ = os.Stderr.WriteString(fmt.Sprintf("get log file stat error: %v\n", err))
		return
	}
	if fileStat.Size() >= int64(CONF.FileMaxSize) {
		err = l.logFile.Close()
		if err != nil {
			_, _ = os.Stderr.WriteString(fmt.Sprintf("close old log file error: %v\n", err))
			return
		}
		timeStr := time.Now().Format("20060102150405")
		err = os.Rename(fileName, fileName+"."+timeStr+".log")
		if err != nil {
			_, _ = os.Stderr.WriteString(fmt.Sprintf("rename old log file error: %v\n", err))
			return
		}
		file, err := os.OpenFile(fileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			_, _ = os.Stderr.WriteString(fmt.Sprintf("open new log file error: %v\n", err))
			return
		}
		l.logFile = file
	}
	_, err = l.logFile.Write(logData)
	if err != nil {
		_, _ = os.Stderr.WriteString(fmt.Sprintf("write log file error: %v\n", err))
		return
	}
}

func formatLog(level int, msg string, param []any) {
	entry := new(logEntry)
	entry.time = time.Now()
	entry.level = level
	if CONF.EnableJson {
		jsonList := make([]any, 0)
		for _, obj := range param {
			data, _ := json.Marshal(obj)
			jsonList = append(jsonList, string(data))
		}
		param = jsonList
	}
	entry.msg = fmt.Appendf(nil, msg, param...)
	if CONF.TrackLine {
		entry.fileName, entry.line, entry.funcName = getLineFunc()
		entry.trackLine = true
	}
	LOG.logChan <- entry
}

func Debug(msg string, param ...any) {
	if CONF.Level > DEBUG {
		return
	}
	formatLog(DEBUG, msg, param)
}

func Info(msg string, param ...any) {
	if CONF.Level > INFO {
		return
	}
	formatLog(INFO, msg, param)
}

func Warn(msg string, param ...any) {
	if CONF.Level > WARN {
		return
	}
	formatLog(WARN, msg, param)
}

func Error(msg string, param ...any) {
	if CONF.Level > ERROR {
		return
	}
	formatLog(ERROR, msg, param)
}

func getLineFunc() (fileName string, line int, funcName string) {
	pc, file, line, ok := runtime.Caller(3)
	if !ok {
		return "???", -1, "???"
	}
	fileName = path.Base(file)
	funcName = runtime.FuncForPC(pc).Name()
	split := strings.Split(funcName, ".")
	if len(split) != 0 {
		funcName = split[len(split)-1]
	}
	return fileName, line, funcName
}

func Stack() string {
	buf := make([]byte, 1024)
	for {
		n := runtime.Stack(buf, false)
		if n < len(buf) {
			return string(buf[:n])
		}
		buf = make([]byte, 2*len(buf))
	}
}
