// entry/messages.go
package entry

import (
	"golang.org/x/text/language"
)

// Messages is the set of user-facing and diagnostic strings the gate emits.
// Two deployments of the entry page differ only in these strings and in the
// librarian route, so both are configuration.
type Messages struct {
	InvalidEmail string
	// ErrorPrefix is prepended to the server's text when it answers 2xx
	// without redirecting.
	ErrorPrefix string
	NotFound    string
	Failure     string

	// Diagnostics logged (never alerted) when the host page lacks elements.
	LibrarianMissing string
	PatronMissing    string
}

// English is the default message set.
var English = Messages{
	InvalidEmail:     "Please enter a valid email.",
	ErrorPrefix:      "Error: ",
	NotFound:         "A user with the specified email was not found. Please try again.",
	Failure:          "Something went wrong. Please try again later.",
	LibrarianMissing: "The 'Librarian Mode' button was not found.",
	PatronMissing:    "The 'User Mode' button or form was not found.",
}

// Russian is the message set of the Russian-language deployment.
var Russian = Messages{
	InvalidEmail:     "Пожалуйста, введите корректный email.",
	ErrorPrefix:      "Ошибка: ",
	NotFound:         "Пользователь с таким email не найден. Попробуйте еще раз.",
	Failure:          "Что-то пошло не так. Попробуйте позже.",
	LibrarianMissing: "Кнопка 'Режим библиотекаря' не найдена.",
	PatronMissing:    "Кнопка 'Режим пользователя' или форма не найдены.",
}

// supported and catalog are parallel; the first entry is the fallback.
var (
	supported = []language.Tag{language.English, language.Russian}
	catalog   = []Messages{English, Russian}
	matcher   = language.NewMatcher(supported)
)

// MessagesFor returns the built-in message set closest to the BCP 47 tag
// (e.g. "ru", "ru-RU", "en-GB"). Unknown or malformed tags get English.
func MessagesFor(tag string) Messages {
	t, err := language.Parse(tag)
	if err != nil {
		return English
	}
	_, idx, conf := matcher.Match(t)
	if conf == language.No {
		return English
	}
	return catalog[idx]
}

// Merge returns m with every non-empty field of override applied.
func (m Messages) Merge(override Messages) Messages {
	pick := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	pick(&m.InvalidEmail, override.InvalidEmail)
	pick(&m.ErrorPrefix, override.ErrorPrefix)
	pick(&m.NotFound, override.NotFound)
	pick(&m.Failure, override.Failure)
	pick(&m.LibrarianMissing, override.LibrarianMissing)
	pick(&m.PatronMissing, override.PatronMissing)
	return m
}
