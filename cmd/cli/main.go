package main

import "fmt"

func main() {
	Execute()
}

func printBanner() {
	banner := `
 ____  _             _ _     _   ____  _   _    _
|  _ \| | __ _ _   _| (_)___| |_|  _ \| \ | |  / \
| |_) | |/ _' | | | | | / __| __| | | |  \| | / _ \
|  __/| | (_| | |_| | | \__ \ |_| |_| | |\  |/ ___ \
|_|   |_|\__,_|\__, |_|_|___/\__|____/|_| \_/_/   \_\
               |___/
        Playlist Audio-Analysis Dataset Tool
`
	fmt.Println(banner)
}
