package password

func SetCost(c int) func() {
	previous := cost
	cost = c

	return func() { cost = previous }
}
