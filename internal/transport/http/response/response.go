package response

// Resp 统一响应壳；code 沿用 HTTP 语义（见 code.go）
type Resp struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

// data 永不为 null，空数据统一用这个占位
var empty = struct{}{}

func New(code int, msg string, data interface{}) Resp {
	if data == nil {
		data = empty
	}
	return Resp{Code: code, Msg: msg, Data: data}
}

func OK(data interface{}) Resp {
	return New(CodeOK, CodeMsgMap[CodeOK], data)
}

// Error msg 为空时退回 CodeMsgMap 的默认文案
func Error(code int, msg string) Resp {
	if msg == "" {
		msg = CodeMsgMap[code]
	}
	return New(code, msg, empty)
}
