// Package clarify collects answers to the clarification questions issued by
// the consultation backend and validates them before submission.
package clarify

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hukumku/consult-gateway/internal/entity"
)

const dateLayout = "2006-01-02"

// Fixed values accepted for yes_no questions. Front ends render localized
// labels but always submit these.
const (
	AnswerYes = "yes"
	AnswerNo  = "no"
)

// Collector holds the single live set of pending clarification questions.
// SetQuestions replaces it wholesale; Submit consumes it.
type Collector struct {
	questions []entity.ClarificationQuestion
	answers   map[string]string
	fieldErrs map[string]string
}

func NewCollector() *Collector {
	return &Collector{
		answers:   make(map[string]string),
		fieldErrs: make(map[string]string),
	}
}

// SetQuestions replaces the pending question set. Previously collected
// answers and validation errors are discarded; an empty or nil list means
// nothing is pending.
func (c *Collector) SetQuestions(questions []entity.ClarificationQuestion) {
	c.questions = questions
	c.answers = make(map[string]string)
	c.fieldErrs = make(map[string]string)
}

// Questions returns the pending questions in presentation order.
func (c *Collector) Questions() []entity.ClarificationQuestion {
	return c.questions
}

// HasPending reports whether any questions await answers.
func (c *Collector) HasPending() bool {
	return len(c.questions) > 0
}

// SetAnswer records the answer for one question, validating it against the
// question's answer type. A valid non-empty value clears any validation
// error previously flagged on that question; an empty value removes both
// the stored answer and the flagged error, leaving the question untouched.
func (c *Collector) SetAnswer(question, value string) error {
	q, ok := c.find(question)
	if !ok {
		return fmt.Errorf("%w: %q", entity.ErrUnknownQuestion, question)
	}

	value = strings.TrimSpace(value)
	if value == "" {
		delete(c.answers, question)
		delete(c.fieldErrs, question)
		return nil
	}

	if err := validateAnswer(q, value); err != nil {
		c.fieldErrs[question] = err.Error()
		return err
	}

	c.answers[question] = value
	delete(c.fieldErrs, question)
	return nil
}

// FieldErrors returns the current validation errors in question order.
func (c *Collector) FieldErrors() []entity.FieldError {
	var out []entity.FieldError
	for _, q := range c.questions {
		if msg, ok := c.fieldErrs[q.Question]; ok {
			out = append(out, entity.FieldError{Question: q.Question, Error: msg})
		}
	}
	return out
}

// Submit validates that every required question has a non-empty answer. On
// success it returns the answer map keyed by question text and clears the
// pending set; on failure it returns the per-question errors, both missing
// required answers and still-flagged typed errors, and keeps the questions
// pending so the user can fix exactly the flagged ones.
func (c *Collector) Submit() (map[string]string, []entity.FieldError) {
	for _, q := range c.questions {
		if q.Required && c.answers[q.Question] == "" {
			// A typed error already flagged on the question wins over the
			// generic required message.
			if _, flagged := c.fieldErrs[q.Question]; !flagged {
				c.fieldErrs[q.Question] = entity.ErrAnswerRequired.Error()
			}
		}
	}
	if fields := c.FieldErrors(); len(fields) > 0 {
		return nil, fields
	}

	answers := make(map[string]string, len(c.answers))
	for _, q := range c.questions {
		if v, ok := c.answers[q.Question]; ok {
			answers[q.Question] = v
		}
	}

	c.SetQuestions(nil)
	return answers, nil
}

func (c *Collector) find(question string) (entity.ClarificationQuestion, bool) {
	for _, q := range c.questions {
		if q.Question == question {
			return q, true
		}
	}
	return entity.ClarificationQuestion{}, false
}

func validateAnswer(q entity.ClarificationQuestion, value string) error {
	switch q.Type {
	case entity.AnswerTypeMultipleChoice:
		for _, choice := range q.Choices {
			if value == choice {
				return nil
			}
		}
		return fmt.Errorf("%w: must be one of the offered choices", entity.ErrInvalidAnswer)
	case entity.AnswerTypeYesNo:
		if value == AnswerYes || value == AnswerNo {
			return nil
		}
		return fmt.Errorf("%w: must be %q or %q", entity.ErrInvalidAnswer, AnswerYes, AnswerNo)
	case entity.AnswerTypeDate:
		if _, err := time.Parse(dateLayout, value); err != nil {
			return fmt.Errorf("%w: must be a date in %s format", entity.ErrInvalidAnswer, dateLayout)
		}
		return nil
	case entity.AnswerTypeNumber:
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return fmt.Errorf("%w: must be a number", entity.ErrInvalidAnswer)
		}
		return nil
	default:
		// text and unrecognized types accept any non-empty string
		return nil
	}
}
