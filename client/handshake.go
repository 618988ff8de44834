package client

import (
	"strconv"

	"github.com/nvim-rpc/go-client/internal/logger"
	"github.com/nvim-rpc/go-client/msgpack"
)

// APIVersion is the version block nested in ApiInfo.
type APIVersion struct {
	Major         int64
	Minor         int64
	Patch         int64
	APILevel      int64
	APICompatible int64
	APIPrerelease bool
	Prerelease    bool
	Build         string // empty if absent
}

// APIFunction describes one function entry from nvim_get_api_info.
// Parameters is [][2]string of (type, name) pairs, matching the real
// wire shape: each parameter entry that carries more than two
// elements has its extra entries logged at debug level and dropped,
// rather than rejected outright.
type APIFunction struct {
	Name       string
	Since      int64
	Method     bool
	ReturnType string
	Parameters [][2]string
}

// APIInfo is the parsed result of the nvim_get_api_info handshake.
type APIInfo struct {
	ChannelID int64
	Version   APIVersion
	Functions []APIFunction
}

// parseAPIInfo parses the 2-element [channel_id, metadata] array
// returned by nvim_get_api_info. Unknown optional fields are ignored;
// a missing required field aborts with *ProtocolError.
func parseAPIInfo(v msgpack.Value) (APIInfo, error) {
	elems, err := msgpack.ExpectArray(v)
	if err != nil {
		return APIInfo{}, &ProtocolError{Message: "nvim_get_api_info result is not an array", Cause: err}
	}
	if len(elems) != 2 {
		return APIInfo{}, &ProtocolError{Message: "nvim_get_api_info result does not have 2 elements"}
	}

	channelID, err := msgpack.ExpectInt64(elems[0])
	if err != nil {
		return APIInfo{}, &ProtocolError{Message: "channel_id is not an integer", Cause: err}
	}

	metadata, err := msgpack.ExpectMap(elems[1])
	if err != nil {
		return APIInfo{}, &ProtocolError{Message: "metadata is not a map", Cause: err}
	}

	versionVal, ok := metadata.Get("version")
	if !ok {
		return APIInfo{}, &ProtocolError{Message: "metadata missing required field \"version\""}
	}
	version, err := parseAPIVersion(versionVal)
	if err != nil {
		return APIInfo{}, err
	}

	functionsVal, ok := metadata.Get("functions")
	if !ok {
		return APIInfo{}, &ProtocolError{Message: "metadata missing required field \"functions\""}
	}
	functions, err := parseAPIFunctions(functionsVal)
	if err != nil {
		return APIInfo{}, err
	}

	return APIInfo{ChannelID: channelID, Version: version, Functions: functions}, nil
}

func parseAPIVersion(v msgpack.Value) (APIVersion, error) {
	m, err := msgpack.ExpectMap(v)
	if err != nil {
		return APIVersion{}, &ProtocolError{Message: "version is not a map", Cause: err}
	}

	var out APIVersion
	for _, field := range []struct {
		key string
		dst *int64
	}{
		{"major", &out.Major},
		{"minor", &out.Minor},
		{"patch", &out.Patch},
		{"api_level", &out.APILevel},
		{"api_compatible", &out.APICompatible},
	} {
		val, ok := m.Get(field.key)
		if !ok {
			return APIVersion{}, &ProtocolError{Message: "version missing required field \"" + field.key + "\""}
		}
		n, err := msgpack.ExpectInt64(val)
		if err != nil {
			return APIVersion{}, &ProtocolError{Message: "version." + field.key + " is not an integer", Cause: err}
		}
		*field.dst = n
	}

	if val, ok := m.Get("api_prerelease"); ok {
		out.APIPrerelease, _ = msgpack.AsBool(val)
	}
	if val, ok := m.Get("prerelease"); ok {
		out.Prerelease, _ = msgpack.AsBool(val)
	}
	if val, ok := m.Get("build"); ok {
		if b, ok := msgpack.AsStr(val); ok {
			out.Build = string(b)
		}
	}
	return out, nil
}

func parseAPIFunctions(v msgpack.Value) ([]APIFunction, error) {
	elems, err := msgpack.ExpectArray(v)
	if err != nil {
		return nil, &ProtocolError{Message: "functions is not an array", Cause: err}
	}

	out := make([]APIFunction, 0, len(elems))
	for i, fv := range elems {
		fn, err := parseAPIFunction(fv)
		if err != nil {
			return nil, &ProtocolError{Message: "functions[" + strconv.Itoa(i) + "]", Cause: err}
		}
		out = append(out, fn)
	}
	return out, nil
}

func parseAPIFunction(v msgpack.Value) (APIFunction, error) {
	m, err := msgpack.ExpectMap(v)
	if err != nil {
		return APIFunction{}, err
	}

	nameVal, ok := m.Get("name")
	if !ok {
		return APIFunction{}, &ProtocolError{Message: "function missing required field \"name\""}
	}
	name, err := msgpack.ExpectStr(nameVal)
	if err != nil {
		return APIFunction{}, &ProtocolError{Message: "function.name is not a string", Cause: err}
	}

	returnTypeVal, ok := m.Get("return_type")
	if !ok {
		return APIFunction{}, &ProtocolError{Message: "function missing required field \"return_type\""}
	}
	returnType, err := msgpack.ExpectStr(returnTypeVal)
	if err != nil {
		return APIFunction{}, &ProtocolError{Message: "function.return_type is not a string", Cause: err}
	}

	var since int64
	if val, ok := m.Get("since"); ok {
		since, _ = msgpack.AsInt64(val)
	}

	var method bool
	if val, ok := m.Get("method"); ok {
		method, _ = msgpack.AsBool(val)
	}

	var params [][2]string
	if val, ok := m.Get("parameters"); ok {
		paramList, err := msgpack.ExpectArray(val)
		if err != nil {
			return APIFunction{}, &ProtocolError{Message: "function.parameters is not an array", Cause: err}
		}
		params = make([][2]string, 0, len(paramList))
		for _, pv := range paramList {
			pair, ok := parseParameterPair(pv)
			if ok {
				params = append(params, pair)
			}
		}
	}

	return APIFunction{
		Name:       string(name),
		Since:      since,
		Method:     method,
		ReturnType: string(returnType),
		Parameters: params,
	}, nil
}

// parseParameterPair takes the first two elements of a parameter
// entry as (type, name); any further elements are logged at debug
// level and ignored. Entries that don't even have two elements are
// dropped rather than failing the whole handshake.
func parseParameterPair(v msgpack.Value) ([2]string, bool) {
	elems, ok := msgpack.AsArray(v)
	if !ok || len(elems) < 2 {
		return [2]string{}, false
	}
	if len(elems) > 2 {
		logger.Debug("nvim-rpc client: ignoring extra parameter entry elements", "extra", len(elems)-2)
	}
	typ, ok1 := msgpack.AsStr(elems[0])
	name, ok2 := msgpack.AsStr(elems[1])
	if !ok1 || !ok2 {
		return [2]string{}, false
	}
	return [2]string{string(typ), string(name)}, true
}
