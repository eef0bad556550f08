// Command goums inspects FAT32 disk images the same way the library
// accesses real mass storage devices, which makes it handy for debugging
// both.
package main

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/aligator/goums"
	"github.com/aligator/goums/driver"
	"github.com/aligator/goums/fs"
)

func mountImage(path string) (fs.FileSystem, *os.File, error) {
	image, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, nil, err
	}

	device := driver.NewFileBlockDevice(image)
	if err := device.Init(); err != nil {
		image.Close()
		return nil, nil, err
	}

	fileSystems, err := goums.CreateFileSystems(device)
	if err != nil {
		image.Close()
		return nil, nil, err
	}

	return fileSystems[0], image, nil
}

func main() {
	app := &cli.App{
		Name:  "goums",
		Usage: "inspect FAT32 disk images",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				log.SetLevel(log.DebugLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "info",
				Usage:     "show volume information",
				ArgsUsage: "<image>",
				Action: func(c *cli.Context) error {
					fileSystem, image, err := mountImage(c.Args().Get(0))
					if err != nil {
						return err
					}
					defer image.Close()

					free, err := fileSystem.FreeSpace()
					if err != nil {
						return err
					}

					fmt.Printf("label:      %s\n", fileSystem.VolumeLabel())
					fmt.Printf("capacity:   %d\n", fileSystem.Capacity())
					fmt.Printf("free:       %d\n", free)
					fmt.Printf("chunk size: %d\n", fileSystem.ChunkSize())
					return nil
				},
			},
			{
				Name:      "ls",
				Usage:     "list a directory",
				ArgsUsage: "<image> [path]",
				Action: func(c *cli.Context) error {
					fileSystem, image, err := mountImage(c.Args().Get(0))
					if err != nil {
						return err
					}
					defer image.Close()

					found, err := fileSystem.RootDirectory().Search(c.Args().Get(1))
					if err != nil {
						return err
					}
					if found == nil {
						return fmt.Errorf("%s: not found", c.Args().Get(1))
					}

					children, err := found.ListFiles()
					if err != nil {
						return err
					}
					for _, child := range children {
						if child.IsDirectory() {
							fmt.Printf("%s/\n", child.Name())
							continue
						}
						length, err := child.Length()
						if err != nil {
							return err
						}
						fmt.Printf("%s\t%d\n", child.Name(), length)
					}
					return nil
				},
			},
			{
				Name:      "cat",
				Usage:     "print a file to stdout",
				ArgsUsage: "<image> <path>",
				Action: func(c *cli.Context) error {
					fileSystem, image, err := mountImage(c.Args().Get(0))
					if err != nil {
						return err
					}
					defer image.Close()

					file, err := goums.NewAferoFs(fileSystem).Open(c.Args().Get(1))
					if err != nil {
						return err
					}
					defer file.Close()

					_, err = io.Copy(os.Stdout, file)
					return err
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
