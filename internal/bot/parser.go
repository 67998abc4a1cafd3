package bot

import "strings"

// CommandParser парсит команды с префиксами !, . и /.
type CommandParser struct {
	validPrefixes []string
	botUsername   string
}

// NewCommandParser создаёт парсер. botUsername нужен, чтобы понимать
// команды вида /wheel@my_bot в группах.
func NewCommandParser(botUsername string) *CommandParser {
	return &CommandParser{
		validPrefixes: []string{"!", ".", "/"},
		botUsername:   strings.ToLower(botUsername),
	}
}

// ParseCommand разбирает текст на команду и аргументы.
// Команда приводится к нижнему регистру, "ё" заменяется на "е".
func (p *CommandParser) ParseCommand(text string) (string, []string, bool) {
	text = strings.TrimSpace(text)

	hasPrefix := false
	for _, prefix := range p.validPrefixes {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimPrefix(text, prefix)
			hasPrefix = true
			break
		}
	}
	if !hasPrefix {
		return "", nil, false
	}

	parts := strings.Fields(text)
	if len(parts) == 0 {
		return "", nil, false
	}

	command := strings.ToLower(parts[0])
	if at := strings.IndexByte(command, '@'); at >= 0 {
		if p.botUsername != "" && command[at+1:] != p.botUsername {
			// Команда другому боту
			return "", nil, false
		}
		command = command[:at]
	}
	command = strings.ReplaceAll(command, "ё", "е")
	if command == "" {
		return "", nil, false
	}

	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}
	return command, args, true
}
