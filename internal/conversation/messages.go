package conversation

import (
	"errors"
	"fmt"

	"github.com/m3rciful/insurancebot/internal/domain"
	"github.com/m3rciful/insurancebot/internal/extraction"
	"github.com/m3rciful/insurancebot/internal/generation"
)

const (
	GreetingText = "Hello! I'm your insurance assistant bot. I'll help you purchase car insurance.\n" +
		"To get started, please send me a photo of your passport."
	UnknownCommandText   = "Sorry, I don't understand that command. Please send /start to begin the insurance process."
	NonPhotoUploadText   = "Please send a photo of the required document."
	PhotoSaveFailedText  = "Error saving the photo. Please try again."
	SomethingWrongText   = "Something went wrong. Please try again."
	EmptyCompletionText  = "Sorry, I didn't catch that. Could you say it another way?"
	noExtractedText      = "No text extracted"
	passportTurnText     = "SYSTEM:**Passport photo sent**"
	vehicleTurnText      = "SYSTEM:**Vehicle photo sent**"
	generationAuthText   = "Sorry, I can't reach the assistant right now because of a configuration problem. Please try again later."
	generationBadReqText = "Sorry, I couldn't process that message. Please rephrase it and try again."
	generationDownText   = "Sorry, the assistant is temporarily unavailable. Please try again in a moment."
)

func orNoText(s string) string {
	if s == "" {
		return noExtractedText
	}
	return s
}

func passportProcessedText(fullText string) string {
	return "Passport data processed successfully.\n\n" +
		"Extracted text:\n" + orNoText(fullText) + "\n\n" +
		"Now, please send a photo of your vehicle identification document."
}

func bothDocumentsText(passportText, vehicleText string) string {
	return "Here's all the extracted information:\n\n" +
		"Passport Data:\n" + orNoText(passportText) + "\n\n" +
		"Vehicle Data:\n" + orNoText(vehicleText) + "\n\n" +
		"Please confirm if all information is correct. If not, you can resend either document."
}

func photoTurnText(kind domain.DocumentKind) string {
	if kind == domain.Passport {
		return passportTurnText
	}
	return vehicleTurnText
}

func extractionFailedText(kind domain.DocumentKind, err error) string {
	var xerr *extraction.Error
	if errors.As(err, &xerr) {
		if xerr.Reason == extraction.ReasonEmpty {
			return fmt.Sprintf("Could not extract data from the %s. Please try again with a clearer photo.", kind.Label())
		}
		return fmt.Sprintf("Error processing the %s: %s. Please try again with a clearer photo.", kind.Label(), xerr.Cause())
	}
	return fmt.Sprintf("Error processing the %s. Please try again with a clearer photo.", kind.Label())
}

func generationFailedText(err error) string {
	var gerr *generation.Error
	if !errors.As(err, &gerr) {
		return generationDownText
	}
	switch gerr.Class {
	case generation.ClassAuth:
		return generationAuthText
	case generation.ClassBadRequest:
		return generationBadReqText
	}
	return generationDownText
}
