package bridge

// Options describe one bridge process. The room identity is the only
// required input; a missing room is a fatal bootstrap error.
type Options struct {
	Room         string `short:"r" long:"room" env:"PUMP_FUN_ROOM" description:"pump.fun room identity (token address)" required:"true"`
	Username     string `long:"username" env:"PUMP_FUN_USERNAME" description:"display identity used when joining the room"`
	ServerURL    string `long:"server" env:"PUMP_FUN_CHAT_URL" description:"livechat endpoint override"`
	HistoryLimit int    `long:"history" default:"100" description:"message history hint passed to the chat client"`
	HTTPAddr     string `long:"http" description:"serve MCP over HTTP/SSE on this address instead of stdio"`
}
