package options

// Controller applies user interactions to an Accessor. Each method performs
// exactly one Set, so subscribers recompute once per interaction.
type Controller struct {
	acc Accessor
}

// NewController wraps acc.
func NewController(acc Accessor) *Controller {
	return &Controller{acc: acc}
}

// Options returns the current options.
func (c *Controller) Options() Options {
	return c.acc.Get()
}

// SetResourceNameFilter replaces the name filter text.
func (c *Controller) SetResourceNameFilter(text string) Options {
	o := c.acc.Get()
	o.ResourceNameFilter = text
	c.acc.Set(o)

	return o
}

// SetAlertsOnTop sets the alerts-on-top flag.
func (c *Controller) SetAlertsOnTop(on bool) Options {
	o := c.acc.Get()
	o.AlertsOnTop = on
	c.acc.Set(o)

	return o
}

// ToggleAlertsOnTop flips the alerts-on-top flag.
func (c *Controller) ToggleAlertsOnTop() Options {
	return c.SetAlertsOnTop(!c.acc.Get().AlertsOnTop)
}

// Reset restores the defaults.
func (c *Controller) Reset() Options {
	c.acc.Set(Default())

	return Default()
}
