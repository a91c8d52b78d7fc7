package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
	yamlv3 "go.yaml.in/yaml/v3"

	"github.com/lwmacct/251207-go-pkg-filtering/pkg/errdefs"
	"github.com/lwmacct/251207-go-pkg-filtering/pkg/interp"
	"github.com/lwmacct/251207-go-pkg-filtering/pkg/tokfilter"
)

// EnvPrefix 环境变量前缀，例如 filter.multi-line → FILTERING_FILTER_MULTI_LINE。
const EnvPrefix = "FILTERING_"

// ConfigFlag 指定配置文件路径的 flag 名称。
const ConfigFlag = "config"

// DefaultPaths 返回默认配置文件的搜索顺序，先命中的文件生效。
//
// 优先级 (从高到低)：
//  1. ./.appname.yaml - 当前目录应用配置
//  2. ~/.appname.yaml - 用户主目录配置
//  3. /etc/appname/config.yaml - 系统级配置
func DefaultPaths(appName string) []string {
	paths := []string{"." + appName + ".yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, "."+appName+".yaml"))
	}

	return append(paths, "/etc/"+appName+"/config.yaml")
}

// Load 读取配置并按优先级合并。
//
// cmd 为 nil 时跳过 CLI flags；cmd 上设置了 --config 时只读取该文件，
// 文件不存在视为错误。
func Load(cmd *cli.Command, appName string) (*Config, error) {
	defaults := DefaultConfig()
	configMap := structToMap(defaults)

	paths, explicit := DefaultPaths(appName), false
	if cmd != nil && cmd.String(ConfigFlag) != "" {
		paths, explicit = []string{cmd.String(ConfigFlag)}, true
	}

	fileMap, err := loadFirstFile(paths, explicit)
	if err != nil {
		return nil, err
	}
	mergeMaps(configMap, fileMap)

	fields := collectFields(reflect.TypeOf(defaults), "")
	if err := applyEnv(configMap, fields); err != nil {
		return nil, err
	}
	if cmd != nil {
		applyFlags(cmd, configMap, fields)
	}

	var cfg Config
	if err := decodeConfigMap(configMap, &cfg); err != nil {
		return nil, fmt.Errorf("%w: decode config: %w", errdefs.ErrConfiguration, err)
	}

	return &cfg, nil
}

func loadFirstFile(paths []string, explicit bool) (map[string]any, error) {
	for _, path := range paths {
		content, err := os.ReadFile(path) //nolint:gosec // path is from trusted config
		if err != nil {
			if explicit {
				return nil, fmt.Errorf("%w: read config file: %w", errdefs.ErrConfiguration, err)
			}

			continue
		}

		content, err = ExpandEnv(content)
		if err != nil {
			return nil, fmt.Errorf("%w: expand %s: %w", errdefs.ErrConfiguration, path, err)
		}

		fileMap, err := parseConfigBytes(path, content)
		if err != nil {
			return nil, fmt.Errorf("%w: parse config file %s: %w", errdefs.ErrConfiguration, path, err)
		}

		slog.Debug("Loaded config from file", "path", path)

		return fileMap, nil
	}

	slog.Debug("No config file found, using defaults")

	return map[string]any{}, nil
}

// ExpandEnv 展开 content 中的 ${VAR} 表达式，支持 ${VAR:-default} 等 shell 形式。
//
// 未定义且没有默认值的表达式原样保留。
func ExpandEnv(content []byte) ([]byte, error) {
	svc := interp.New(interp.WithSources(interp.EnvSource("")))
	f := tokfilter.New(bytes.NewReader(content), svc, tokfilter.MustConfig(true))

	return io.ReadAll(f)
}

// ═══════════════════════════════════════════════════════════════
// 字段与绑定
// ═══════════════════════════════════════════════════════════════

// field 配置叶子字段，key 为 json tag 拼接的路径。
type field struct {
	key string
	typ reflect.Type
}

// flagName 返回 CLI flag 名称，"." 替换为 "-"。
func (f field) flagName() string {
	return strings.ReplaceAll(f.key, ".", "-")
}

// envName 返回环境变量名，"." 与 "-" 替换为 "_" 并大写。
func (f field) envName() string {
	return EnvPrefix + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(f.key))
}

func collectFields(typ reflect.Type, prefix string) []field {
	var out []field
	for i := range typ.NumField() {
		sf := typ.Field(i)
		key := tagName(sf)
		if key == "" {
			continue
		}
		if prefix != "" {
			key = prefix + "." + key
		}
		if sf.Type.Kind() == reflect.Struct {
			out = append(out, collectFields(sf.Type, key)...)
			continue
		}
		out = append(out, field{key: key, typ: sf.Type})
	}

	return out
}

func tagName(sf reflect.StructField) string {
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}

	return name
}

// applyEnv 将已设置的环境变量写入配置 map。
//
// 切片以逗号分隔，map 形如 k1=v1,k2=v2。
func applyEnv(config map[string]any, fields []field) error {
	for _, f := range fields {
		val, ok := os.LookupEnv(f.envName())
		if !ok || val == "" {
			continue
		}

		switch f.typ.Kind() {
		case reflect.Slice:
			setByPath(config, f.key, splitList(val))
		case reflect.Map:
			m, err := parsePairs(val)
			if err != nil {
				return fmt.Errorf("%w: %s: %w", errdefs.ErrConfiguration, f.envName(), err)
			}
			setByPath(config, f.key, m)
		default:
			setByPath(config, f.key, val)
		}

		slog.Debug("Loaded env binding", "env", f.envName(), "path", f.key)
	}

	return nil
}

// applyFlags 将用户显式设置的 CLI flags 写入配置 map。
func applyFlags(cmd *cli.Command, config map[string]any, fields []field) {
	for _, f := range fields {
		name := f.flagName()
		if !cmd.IsSet(name) {
			continue
		}

		switch f.typ.Kind() {
		case reflect.String:
			setByPath(config, f.key, cmd.String(name))
		case reflect.Bool:
			setByPath(config, f.key, cmd.Bool(name))
		case reflect.Int:
			setByPath(config, f.key, cmd.Int(name))
		case reflect.Slice:
			setByPath(config, f.key, cmd.StringSlice(name))
		case reflect.Map:
			setByPath(config, f.key, cmd.StringMap(name))
		default:
		}
	}
}

func splitList(val string) []any {
	parts := strings.Split(val, ",")
	out := make([]any, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}

func parsePairs(val string) (map[string]any, error) {
	out := make(map[string]any)
	for pair := range strings.SplitSeq(val, ",") {
		if strings.TrimSpace(pair) == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid pair %q, expected key=value", pair)
		}
		out[strings.TrimSpace(k)] = v
	}

	return out, nil
}

// ═══════════════════════════════════════════════════════════════
// map 操作
// ═══════════════════════════════════════════════════════════════

// structToMap 以 json tag 为 key 将默认配置转为嵌套 map。
func structToMap(cfg any) map[string]any {
	return valueToAny(reflect.ValueOf(cfg)).(map[string]any)
}

func valueToAny(val reflect.Value) any {
	switch val.Kind() {
	case reflect.Struct:
		out := make(map[string]any)
		for i := range val.NumField() {
			if key := tagName(val.Type().Field(i)); key != "" {
				out[key] = valueToAny(val.Field(i))
			}
		}

		return out
	case reflect.Slice:
		if val.IsNil() {
			return nil
		}
		out := make([]any, val.Len())
		for i := range val.Len() {
			out[i] = valueToAny(val.Index(i))
		}

		return out
	case reflect.Map:
		if val.IsNil() {
			return nil
		}
		out := make(map[string]any, val.Len())
		iter := val.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = valueToAny(iter.Value())
		}

		return out
	default:
		return val.Interface()
	}
}

func parseConfigBytes(path string, content []byte) (map[string]any, error) {
	var raw any
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(content, &raw)
	case ".toml":
		m := map[string]any{}
		err = toml.Unmarshal(content, &m)
		raw = m
	default:
		err = yamlv3.Unmarshal(content, &raw)
	}
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return map[string]any{}, nil
	}

	configMap, ok := normalizeMapKeys(raw).(map[string]any)
	if !ok {
		return nil, errors.New("config root must be object")
	}

	return configMap, nil
}

func normalizeMapKeys(val any) any {
	switch typed := val.(type) {
	case map[string]any:
		for key, value := range typed {
			typed[key] = normalizeMapKeys(value)
		}

		return typed
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			out[fmt.Sprint(key)] = normalizeMapKeys(value)
		}

		return out
	case []any:
		for i := range typed {
			typed[i] = normalizeMapKeys(typed[i])
		}

		return typed
	default:
		return val
	}
}

// mergeMaps 将 src 递归合并到 dst；filter.properties 这类 map 同样按 key 合并。
func mergeMaps(dst, src map[string]any) {
	for key, value := range src {
		if valueMap, ok := value.(map[string]any); ok {
			if dstMap, ok := dst[key].(map[string]any); ok {
				mergeMaps(dstMap, valueMap)
				continue
			}
		}

		dst[key] = value
	}
}

func setByPath(dst map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := dst
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}

func decodeConfigMap(data map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.TextUnmarshallerHookFunc(),
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		TagName:          "json",
	})
	if err != nil {
		return err
	}

	return decoder.Decode(data)
}
