package export

// SetBeforeFinish installs a hook that runs after the engine reports success
// and before the job is committed.
func SetBeforeFinish(c *Controller, fn func()) {
	c.beforeFinish = fn
}
