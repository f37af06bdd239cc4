// Command ghettosync copies artist/album directories from a music library
// to a device after you tick them in an editable checklist.
package main

func main() {
	Execute()
}
