package config

import (
	"fmt"
	"os"

	"github.com/hjson/hjson-go/v4"
)

var CONF *Config = nil

type Config struct {
	Logger   Logger  `json:"logger"`
	NavMesh  NavMesh `json:"navMesh"`
	HttpPort int32   `json:"httpPort"`
}

type Logger struct {
	Level        string `json:"level"`
	TrackLine    bool   `json:"trackLine"`
	EnableFile   bool   `json:"enableFile"`
	DisableColor bool   `json:"disableColor"`
	EnableJson   bool   `json:"enableJson"`
}

type NavMesh struct {
	MmapPath             string             `json:"mmapPath"`
	MaxCacheSize         int64              `json:"maxCacheSize"`
	EnableCache          bool               `json:"enableCache"`
	PathSmoothIterations int32              `json:"pathSmoothIterations"`
	LoadWorkers          int32              `json:"loadWorkers"`
	PathSearchNodeLimit  int32              `json:"pathSearchNodeLimit"`
	WarmupFile           string             `json:"warmupFile"`
	AreaCost             map[string]float32 `json:"areaCost"`
}

func DefaultConfig() *Config {
	return &Config{
		Logger: Logger{
			Level:     "INFO",
			TrackLine: true,
		},
		NavMesh: NavMesh{
			MmapPath:             "./mmaps",
			MaxCacheSize:         64 * 1024 * 1024,
			EnableCache:          true,
			PathSmoothIterations: 3,
			LoadWorkers:          4,
			PathSearchNodeLimit:  65536,
		},
		HttpPort: 8080,
	}
}

func InitConfig(filePath string) {
	CONF = DefaultConfig()
	fileData, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return
		}
		info := fmt.Sprintf("open config file error: %v, path: %v", err, filePath)
		panic(info)
	}
	err = hjson.Unmarshal(fileData, CONF)
	if err != nil {
		info := fmt.Sprintf("parse config file error: %v, path: %v", err, filePath)
		panic(info)
	}
}

func GetConfig() *Config {
	return CONF
}
