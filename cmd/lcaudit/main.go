// Command lcaudit audits commercial invoices against letters of credit from
// the command line.
package main

func main() {
	Execute()
}
