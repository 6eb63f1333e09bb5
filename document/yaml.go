package document

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// maxAliasHops bounds alias chains so a self-referential anchor cannot loop.
const maxAliasHops = 64

func decodeYAML(b []byte, opt Options) (any, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(b, &root); err != nil {
		return nil, &Error{Code: CodeParseError, Message: err.Error(), Err: err}
	}
	if root.Kind == 0 {
		return nil, &Error{Code: CodeParseError, Message: "empty document", Err: io.ErrUnexpectedEOF}
	}
	return yamlValue(&root, "", 0, opt)
}

func yamlValue(n *yaml.Node, path string, depth int, opt Options) (any, error) {
	for hops := 0; n.Kind == yaml.AliasNode; hops++ {
		if hops >= maxAliasHops || n.Alias == nil {
			return nil, &Error{Code: CodeParseError, Path: path, Message: "unresolvable alias"}
		}
		n = n.Alias
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return yamlValue(n.Content[0], path, depth, opt)
	case yaml.MappingNode:
		if opt.MaxDepth > 0 && depth >= opt.MaxDepth {
			return nil, &Error{Code: CodeTooDeep, Path: path, Message: ErrTooDeep.Error(), Err: ErrTooDeep}
		}
		obj := NewObject(len(n.Content) / 2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			child := joinPointer(path, key)
			if obj.Has(key) {
				return nil, &Error{Code: CodeDuplicateKey, Path: child, Message: "key '" + key + "' duplicated", Err: ErrDuplicateKey}
			}
			v, err := yamlValue(n.Content[i+1], child, depth+1, opt)
			if err != nil {
				return nil, err
			}
			obj.Set(key, v)
		}
		return obj, nil
	case yaml.SequenceNode:
		if opt.MaxDepth > 0 && depth >= opt.MaxDepth {
			return nil, &Error{Code: CodeTooDeep, Path: path, Message: ErrTooDeep.Error(), Err: ErrTooDeep}
		}
		arr := make([]any, 0, len(n.Content))
		for i, c := range n.Content {
			v, err := yamlValue(c, joinPointer(path, strconv.Itoa(i)), depth+1, opt)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.ScalarNode:
		return yamlScalar(n, path, opt)
	}
	return nil, &Error{Code: CodeParseError, Path: path, Message: "unsupported yaml node"}
}

func yamlScalar(n *yaml.Node, path string, opt Options) (any, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, &Error{Code: CodeParseError, Path: path, Message: err.Error(), Err: err}
		}
		return b, nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, &Error{Code: CodeParseError, Path: path, Message: err.Error(), Err: err}
		}
		if opt.NumberMode == NumberFloat64 {
			return float64(i), nil
		}
		return json.Number(strconv.FormatInt(i, 10)), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, &Error{Code: CodeParseError, Path: path, Message: err.Error(), Err: err}
		}
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, &Error{Code: CodeParseError, Path: path, Message: "non-finite number", Err: errors.New("non-finite number")}
		}
		if opt.NumberMode == NumberFloat64 {
			return f, nil
		}
		return json.Number(strconv.FormatFloat(f, 'g', -1, 64)), nil
	default:
		return n.Value, nil
	}
}
