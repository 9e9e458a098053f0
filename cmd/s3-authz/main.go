package main

func main() {
	var (
		v = newSettings()
		l = newLogger(v)
		a = newApp(l, v)
	)

	if v.GetBool(cfgServe) {
		a.Serve()
		return
	}

	a.Run()
}
