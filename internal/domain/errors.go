package domain

import "errors"

var (
	// ErrQuestionSetNotFound indicates the question set could not be located.
	ErrQuestionSetNotFound = errors.New("question set not found")
	// ErrNoQuestions is returned when a session would start with zero questions.
	ErrNoQuestions = errors.New("question set contains no questions")
	// ErrQuestionOutOfRange is returned when jumping to a question that does not exist.
	ErrQuestionOutOfRange = errors.New("question number out of range")
	// ErrFileTooLarge indicates a question-set file exceeds the configured size cap.
	ErrFileTooLarge = errors.New("question file too large")
	// ErrNoQuestionnaires indicates the catalog found nothing to rotate through.
	ErrNoQuestionnaires = errors.New("no questionnaires available")
)
