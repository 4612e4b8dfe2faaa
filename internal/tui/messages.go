package tui

// ClearErrorMsg clears the error shown in the status bar.
type ClearErrorMsg struct{}

// ClearNoticeMsg clears the notice shown in the status bar.
type ClearNoticeMsg struct{}

// clockTickMsg re-renders relative times.
type clockTickMsg struct{}
