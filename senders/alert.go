package senders

import "fmt"

const alertTitle = "Atenção!"

// AlertFormat renders the fixed heart-rate alert sent to caregivers.
type AlertFormat struct {
	SubjectName string
	BPM         int
}

func (af *AlertFormat) Title() string {
	return alertTitle
}

func (af *AlertFormat) Body() string {
	return fmt.Sprintf("BPM elevado detectado para %s: %d", af.SubjectName, af.BPM)
}
