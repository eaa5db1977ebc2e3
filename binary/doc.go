// Package binary installs a roc release asset on the local machine.
//
// An [Installer] downloads the archive an asset points at, extracts it into a
// fresh temporary directory and locates the roc binary inside it. Release
// archives are expected to hold a single top level folder with the binary at
// its root:
//
//	roc_nightly-linux_x86_64-2024-01-02-abc/
//	├── roc
//	├── LICENSE
//	└── ...
//
// Both gzip compressed and plain tar archives are supported.
//
// example usage
//
//	installer := binary.NewInstaller(
//		binary.WithToken(token),
//		binary.WithLogger(console),
//	)
//
//	installation, err := installer.Install(ctx, target.Asset)
//	if err != nil {
//		return err
//	}
//
//	exec.Command(installation.Binary, "version").Run()
package binary
