package lang

// Message identifies a user-facing string that has a translation per language.
type Message int

const (
	MsgRateLimited Message = iota
	MsgParseError
	MsgUpstream
	MsgNetwork
	MsgNotFound
	MsgInvalidRequest
	MsgBusy
)

var messages = map[Message]map[Language]string{
	MsgRateLimited: {
		English: "Please wait a moment before your next answer.",
		Latvian: "Lūdzu, uzgaidiet brīdi pirms nākamās atbildes.",
		Spanish: "Por favor, espera un momento antes de la siguiente respuesta.",
		Russian: "Пожалуйста, подождите немного перед следующим ответом.",
	},
	MsgParseError: {
		English: "Error processing answer. Please try again.",
		Latvian: "Kļūda apstrādājot atbildi. Lūdzu, mēģiniet vēlreiz.",
		Spanish: "Error procesando la respuesta. Por favor, inténtalo de nuevo.",
		Russian: "Ошибка обработки ответа. Пожалуйста, попробуйте снова.",
	},
	MsgUpstream: {
		English: "The AI service could not complete the request. Please try again.",
		Latvian: "MI pakalpojums nevarēja izpildīt pieprasījumu. Lūdzu, mēģiniet vēlreiz.",
		Spanish: "El servicio de IA no pudo completar la solicitud. Inténtalo de nuevo.",
		Russian: "Сервис ИИ не смог выполнить запрос. Попробуйте снова.",
	},
	MsgNetwork: {
		English: "Cannot reach the server. Check your connection and try again.",
		Latvian: "Nevar sazināties ar serveri. Pārbaudiet savienojumu un mēģiniet vēlreiz.",
		Spanish: "No se puede conectar con el servidor. Revisa tu conexión e inténtalo de nuevo.",
		Russian: "Не удаётся связаться с сервером. Проверьте соединение и попробуйте снова.",
	},
	MsgNotFound: {
		English: "That text or part could not be found.",
		Latvian: "Šo tekstu vai daļu nevar atrast.",
		Spanish: "No se encontró ese texto o parte.",
		Russian: "Этот текст или часть не найдены.",
	},
	MsgInvalidRequest: {
		English: "The request was not accepted.",
		Latvian: "Pieprasījums netika pieņemts.",
		Spanish: "La solicitud no fue aceptada.",
		Russian: "Запрос не был принят.",
	},
	MsgBusy: {
		English: "Still working on the previous request.",
		Latvian: "Iepriekšējais pieprasījums vēl tiek apstrādāts.",
		Spanish: "Todavía se está procesando la solicitud anterior.",
		Russian: "Предыдущий запрос ещё выполняется.",
	},
}

// Text returns the translation of m in l, falling back to English.
func Text(l Language, m Message) string {
	byLang, ok := messages[m]
	if !ok {
		return ""
	}
	if s, ok := byLang[l]; ok {
		return s
	}
	return byLang[English]
}
