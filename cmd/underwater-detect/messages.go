package main

const (
	MsgNoImage = "Please upload an image"

	MsgModelUnavailable = "Model %s not available"

	MsgCompleted = "Detection completed in %.2fs"
)
