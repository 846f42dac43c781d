package domain

const (
	RequesterIdCtxKey   = "lb-requesterId"
	RequesterNameCtxKey = "lb-requesterName"
)
