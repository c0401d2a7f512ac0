package ports

// LifecyclePort lets a flow ask the host application to exit so that it
// reloads with the new bundle context.
type LifecyclePort interface {
	RequestExit(reason string)
}
