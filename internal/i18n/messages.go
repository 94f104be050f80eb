package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys are the English texts; Spanish translations are registered below.
const (
	MsgNotFound          = "The requested resource was not found."
	MsgForbidden         = "You do not have permission to perform this action."
	MsgInvalidRequest    = "The request is not valid."
	MsgConflict          = "The operation could not be completed (conflict)."
	MsgUnknown           = "An unexpected error occurred. Please try again."
	MsgUnavailable       = "The service is not available right now. Please try again later."
	MsgInvalidLogin      = "Invalid username or password."
	MsgSessionExpired    = "Your session has expired. Please sign in again."
	MsgLoginRequired     = "You must sign in to continue."
	MsgNoOrgSession      = "Select an organization to continue."
	MsgNotOrgAdmin       = "You are not an administrator of this organization."
	MsgOrgMismatch       = "The requested organization does not match your active organization."
	MsgRegisterNoSession = "You must sign in to enroll."
	MsgUnregNoSession    = "You must sign in to withdraw your enrollment."
	MsgRegisterConflict  = "The enrollment could not be completed (conflict)."
	MsgUnregConflict     = "The withdrawal could not be completed (conflict)."
	MsgRegisterUnknown   = "An error occurred while enrolling. Please try again."
	MsgUnregUnknown      = "An error occurred while withdrawing. Please try again."
	MsgRegistered        = "You enrolled in \"%s\". Remaining seats: %d"
	MsgUnregistered      = "You withdrew from \"%s\". Remaining seats: %d"
	MsgOrgNotMember      = "You are not a member of that organization."
	MsgInvalidForm       = "Please complete all the required fields."
	MsgUnknownOption     = "The selected option is not available."
	MsgLoadHoursFailed   = "Your hours could not be loaded."
	MsgLoadProfileFailed = "Your profile could not be loaded."
	MsgSaveActivityFail  = "An error occurred while saving the activity."
)

var spanish = map[string]string{
	MsgNotFound:          "No se encontró el recurso solicitado.",
	MsgForbidden:         "No tienes permisos para realizar esta acción.",
	MsgInvalidRequest:    "La solicitud no es válida.",
	MsgConflict:          "No se pudo completar la operación (conflicto).",
	MsgUnknown:           "Ocurrió un error inesperado. Intenta nuevamente.",
	MsgUnavailable:       "El servicio no está disponible en este momento. Intenta más tarde.",
	MsgInvalidLogin:      "Usuario o contraseña incorrectos.",
	MsgSessionExpired:    "Tu sesión expiró. Inicia sesión nuevamente.",
	MsgLoginRequired:     "Debes iniciar sesión para continuar.",
	MsgNoOrgSession:      "Selecciona una organización para continuar.",
	MsgNotOrgAdmin:       "No eres administrador de esta organización.",
	MsgOrgMismatch:       "La organización solicitada no coincide con tu organización activa.",
	MsgRegisterNoSession: "Debes iniciar sesión para poder inscribirte.",
	MsgUnregNoSession:    "Debes iniciar sesión para poder desinscribirte.",
	MsgRegisterConflict:  "No se pudo completar la inscripción (conflicto).",
	MsgUnregConflict:     "No se pudo completar la desinscripción (conflicto).",
	MsgRegisterUnknown:   "Ocurrió un error al inscribirte. Intenta nuevamente.",
	MsgUnregUnknown:      "Ocurrió un error al desinscribirte. Intenta nuevamente.",
	MsgRegistered:        "Te inscribiste exitosamente en \"%s\". Cupos restantes: %d",
	MsgUnregistered:      "Te desinscribiste de \"%s\". Cupos restantes: %d",
	MsgOrgNotMember:      "No perteneces a esa organización.",
	MsgInvalidForm:       "Por favor, completa todos los campos requeridos.",
	MsgUnknownOption:     "La opción seleccionada no está disponible.",
	MsgLoadHoursFailed:   "No se pudieron cargar tus horas.",
	MsgLoadProfileFailed: "No se pudo cargar tu perfil.",
	MsgSaveActivityFail:  "Ocurrió un error al guardar la actividad.",
}

func init() {
	for key, text := range spanish {
		_ = message.SetString(language.Spanish, key, text)
		_ = message.SetString(language.English, key, key)
	}
}
