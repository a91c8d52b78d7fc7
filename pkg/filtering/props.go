package filtering

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/magiconair/properties"
	"github.com/pelletier/go-toml/v2"
	yamlv3 "go.yaml.in/yaml/v3"

	"github.com/lwmacct/251207-go-pkg-filtering/pkg/interp"
)

// LoadFilterFile 读取过滤文件为扁平的 key/value。
//
// properties 文件不做 ${...} 预展开，引用在过滤时由插值服务解析。
func LoadFilterFile(path string) (interp.MapSource, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" && ext != ".toml" && ext != ".json" {
		loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
		p, err := loader.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load filter file %s: %w", path, err)
		}

		return interp.MapSource(p.Map()), nil
	}

	content, err := os.ReadFile(path) //nolint:gosec // path is from trusted config
	if err != nil {
		return nil, fmt.Errorf("read filter file %s: %w", path, err)
	}

	var raw any
	switch ext {
	case ".toml":
		err = toml.Unmarshal(content, &raw)
	case ".json":
		err = json.Unmarshal(content, &raw)
	default:
		err = yamlv3.Unmarshal(content, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("parse filter file %s: %w", path, err)
	}

	out := make(interp.MapSource)
	flatten("", raw, out)

	return out, nil
}

// flatten 将嵌套结构展开为 "a.b.0" 形式的 key。
func flatten(prefix string, val any, out interp.MapSource) {
	join := func(key string) string {
		if prefix == "" {
			return key
		}

		return prefix + "." + key
	}

	switch typed := val.(type) {
	case map[string]any:
		for key, value := range typed {
			flatten(join(key), value, out)
		}
	case map[any]any:
		for key, value := range typed {
			flatten(join(fmt.Sprintf("%v", key)), value, out)
		}
	case []any:
		for i, value := range typed {
			flatten(join(strconv.Itoa(i)), value, out)
		}
	case nil:
		if prefix != "" {
			out[prefix] = ""
		}
	default:
		if prefix != "" {
			out[prefix] = fmt.Sprintf("%v", typed)
		}
	}
}
