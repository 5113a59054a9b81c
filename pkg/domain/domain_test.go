package domain

import (
	"errors"
	"testing"

	golibvirt "github.com/digitalocean/go-libvirt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jimyag/virtcim/pkg/device"
	"github.com/jimyag/virtcim/pkg/libvirt"
)

const pvDomain = `<domain type='xen' id='0'>
  <name>sles10foo</name>
  <uuid>7c42b545-ffc4-eb44-41d1-be3936516de3</uuid>
  <bootloader>/usr/lib/xen/boot/domUloader.py</bootloader>
  <bootloader_args>--entry=xvda2:/boot/vmlinuz-xen</bootloader_args>
  <os>
    <type>linux</type>
    <kernel>/var/lib/xen/tmp/kernel.0F29se</kernel>
    <initrd>/var/lib/xen/tmp/ramdisk.qGK5v5</initrd>
    <cmdline>TERM=xterm </cmdline>
  </os>
  <memory>524288</memory>
  <vcpu>2</vcpu>
  <on_poweroff>destroy</on_poweroff>
  <on_reboot>restart</on_reboot>
  <on_crash>preserve</on_crash>
  <devices>
    <emulator>/usr/lib/xen/bin/qemu-dm</emulator>
    <interface type='bridge'>
      <mac address='00:16:3e:62:d1:bd'/>
      <source bridge='xenbr0'/>
    </interface>
    <disk type='file' device='disk'>
      <driver name='file'/>
      <source file='/var/lib/xen/images/sles10/disk0'/>
      <target dev='xvda'/>
    </disk>
    <graphics type='vnc' port='-1'/>
    <graphics type='sdl' port='0'/>
  </devices>
</domain>`

const kvmDomain = `<domain type='kvm'>
  <name>vm1</name>
  <uuid>d7b6f4a4-0d9a-4a0f-9d1c-3a5d7b8a1e11</uuid>
  <memory>1048576</memory>
  <currentMemory>1048576</currentMemory>
  <vcpu>2</vcpu>
  <os>
    <type arch='x86_64' machine='pc'>hvm</type>
    <loader>/usr/share/OVMF/OVMF_CODE.fd</loader>
    <boot dev='hd'/>
  </os>
  <devices>
    <emulator>/usr/bin/qemu-system-x86_64</emulator>
    <disk type='file' device='disk'>
      <driver name='qemu' type='qcow2'/>
      <source file='/var/lib/libvirt/images/vm1.qcow2'/>
      <target dev='vda' bus='virtio'/>
    </disk>
  </devices>
</domain>`

func TestClassify(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name    string
		typeStr string
		osType  string
		want    Type
	}{
		{name: "xen hvm", typeStr: "xen", osType: "hvm", want: TypeXenFV},
		{name: "kvm hvm", typeStr: "kvm", osType: "hvm", want: TypeKVM},
		{name: "qemu hvm", typeStr: "qemu", osType: "hvm", want: TypeKVM},
		{name: "xen linux", typeStr: "xen", osType: "linux", want: TypeXenPV},
		{name: "lxc exe", typeStr: "lxc", osType: "exe", want: TypeLXC},
		{name: "case insensitive", typeStr: "KVM", osType: "HVM", want: TypeKVM},
		{name: "kvm linux", typeStr: "kvm", osType: "linux", want: TypeUnknown},
		{name: "unknown hypervisor", typeStr: "vbox", osType: "hvm", want: TypeUnknown},
		{name: "empty", want: TypeUnknown},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Classify(tc.typeStr, tc.osType))
		})
	}
}

func TestParse_OSVariant(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name     string
		doc      string
		wantType Type
		check    func(t *testing.T, d *Domain)
	}{
		{
			name:     "xen fv",
			doc:      `<domain type='xen'><name>a</name><os><type>hvm</type><loader>/usr/lib/xen/boot/hvmloader</loader><boot dev='cdrom'/></os></domain>`,
			wantType: TypeXenFV,
			check: func(t *testing.T, d *Domain) {
				fv := d.FV()
				require.NotNil(t, fv)
				assert.Equal(t, "/usr/lib/xen/boot/hvmloader", fv.Loader)
				assert.Equal(t, "cdrom", fv.Boot)
				assert.Nil(t, d.PV())
			},
		},
		{
			name:     "lxc",
			doc:      `<domain type='lxc'><name>c1</name><os><type>exe</type><init>/sbin/init</init></os></domain>`,
			wantType: TypeLXC,
			check: func(t *testing.T, d *Domain) {
				lxc := d.LXC()
				require.NotNil(t, lxc)
				assert.Equal(t, "/sbin/init", lxc.Init)
			},
		},
		{
			name:     "unclassified",
			doc:      `<domain type='vbox'><name>v</name><os><type>hvm</type></os></domain>`,
			wantType: TypeUnknown,
			check: func(t *testing.T, d *Domain) {
				assert.Nil(t, d.OS)
			},
		},
		{
			name:     "missing os",
			doc:      `<domain type='kvm'><name>v</name></domain>`,
			wantType: TypeUnknown,
			check: func(t *testing.T, d *Domain) {
				assert.Nil(t, d.OS)
			},
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			d, err := Parse(tc.doc)
			require.NoError(t, err)
			assert.Equal(t, tc.wantType, d.Type)
			tc.check(t, d)
		})
	}
}

func TestParse_PVDomain(t *testing.T) {
	t.Parallel()

	d, err := Parse(pvDomain)
	require.NoError(t, err)

	assert.Equal(t, "sles10foo", d.Name)
	assert.Equal(t, "7c42b545-ffc4-eb44-41d1-be3936516de3", d.UUID)
	assert.Equal(t, "xen", d.TypeStr)
	assert.Equal(t, "/usr/lib/xen/boot/domUloader.py", d.Bootloader)
	assert.Equal(t, "--entry=xvda2:/boot/vmlinuz-xen", d.BootloaderArgs)
	assert.Equal(t, TypeXenPV, d.Type)
	assert.Equal(t, "Xen", d.Type.ClassPrefix())

	pv := d.PV()
	require.NotNil(t, pv)
	assert.Equal(t, "linux", pv.Type)
	assert.Equal(t, "/var/lib/xen/tmp/kernel.0F29se", pv.Kernel)
	assert.Equal(t, "/var/lib/xen/tmp/ramdisk.qGK5v5", pv.Initrd)
	assert.Equal(t, "TERM=xterm ", pv.Cmdline)

	assert.Equal(t, ActionNone, d.OnPoweroff)
	assert.Equal(t, ActionRestart, d.OnReboot)
	assert.Equal(t, ActionPreserve, d.OnCrash)

	require.Len(t, d.Emulator, 1)
	require.Len(t, d.Graphics, 1, "at most one graphics device")
	assert.Equal(t, "vnc", d.Graphics[0].Type)
	require.Len(t, d.Net, 1)
	require.Len(t, d.Disk, 1)
	require.Len(t, d.Memory, 1)
	assert.Equal(t, uint64(524288), d.Memory[0].MaxSize)
	assert.Len(t, d.Vcpu, 2)
	assert.Len(t, d.Devices(), 7)
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()

	for _, doc := range []string{"snarf", "", "<pool type='dir'><name>p</name></pool>"} {
		d, err := Parse(doc)
		assert.ErrorIs(t, err, ErrMalformedXML, doc)
		assert.Nil(t, d)
	}
}

func TestParseAction(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		text string
		want Action
	}{
		{text: "destroy", want: ActionNone},
		{text: "restart", want: ActionRestart},
		{text: "preserve", want: ActionPreserve},
		{text: "rename-restart", want: ActionNone},
		{text: "", want: ActionNone},
	}

	for _, tc := range testcases {
		assert.Equal(t, tc.want, ParseAction(tc.text), tc.text)
	}
}

func TestDomainClear(t *testing.T) {
	t.Parallel()

	d, err := Parse(pvDomain)
	require.NoError(t, err)

	d.Clear()
	assert.Nil(t, d.OS)
	assert.Equal(t, TypeUnknown, d.Type)
	assert.Empty(t, d.Disk)
	assert.Empty(t, d.Net)
	assert.Empty(t, d.Vcpu)
	assert.Empty(t, d.Devices())

	var nilDomain *Domain
	assert.NotPanics(t, nilDomain.Clear)
}

// fakeControlPlane 返回固定结果的 ControlPlane
type fakeControlPlane struct {
	xml      string
	xmlErr   error
	info     *libvirt.DomainInfo
	infoErr  error
	vcpus    []device.VcpuInfo
	vcpusErr error
}

func (f *fakeControlPlane) GetDomainXML(string, golibvirt.DomainXMLFlags) (string, error) {
	return f.xml, f.xmlErr
}

func (f *fakeControlPlane) GetDomainInfo(string) (*libvirt.DomainInfo, error) {
	return f.info, f.infoErr
}

func (f *fakeControlPlane) GetDomainVcpus(string, int) ([]device.VcpuInfo, error) {
	return f.vcpus, f.vcpusErr
}

func TestGet(t *testing.T) {
	t.Parallel()

	running := &libvirt.DomainInfo{
		Name:      "vm1",
		State:     golibvirt.DomainRunning,
		MaxMemory: 1048576,
		Memory:    524288,
		VCPUs:     2,
	}

	testcases := []struct {
		name    string
		cp      *fakeControlPlane
		wantErr error
		check   func(t *testing.T, d *Domain)
	}{
		{
			name: "running domain",
			cp: &fakeControlPlane{
				xml:   kvmDomain,
				info:  running,
				vcpus: []device.VcpuInfo{{Number: 0, CPU: 1}, {Number: 1, CPU: 3}, {Number: 2}},
			},
			check: func(t *testing.T, d *Domain) {
				assert.Equal(t, TypeKVM, d.Type)
				require.Len(t, d.Memory, 1)
				assert.Equal(t, uint64(524288), d.Memory[0].Size)
				require.Len(t, d.Vcpu, 2)
				assert.Equal(t, int32(3), d.Vcpu[1].CPU)
				require.Len(t, d.Emulator, 1)
				assert.Empty(t, d.Graphics)
			},
		},
		{
			name: "inactive domain keeps xml vcpus",
			cp: &fakeControlPlane{
				xml:  kvmDomain,
				info: &libvirt.DomainInfo{State: golibvirt.DomainShutoff, MaxMemory: 1048576, Memory: 1048576, VCPUs: 2},
			},
			check: func(t *testing.T, d *Domain) {
				assert.Len(t, d.Vcpu, 2)
			},
		},
		{
			name: "memory exceeds max",
			cp: &fakeControlPlane{
				xml:  kvmDomain,
				info: &libvirt.DomainInfo{State: golibvirt.DomainRunning, MaxMemory: 1024, Memory: 2048, VCPUs: 1},
			},
			wantErr: device.ErrMemoryInconsistent,
		},
		{
			name: "vcpu count mismatch",
			cp: &fakeControlPlane{
				xml:   kvmDomain,
				info:  running,
				vcpus: []device.VcpuInfo{{Number: 0}},
			},
			wantErr: device.ErrVcpuCountMismatch,
		},
		{
			name:    "malformed xml",
			cp:      &fakeControlPlane{xml: "snarf"},
			wantErr: ErrMalformedXML,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			d, err := Get(tc.cp, "vm1")
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, d)
				return
			}
			require.NoError(t, err)
			tc.check(t, d)
		})
	}
}

func TestGet_ControlPlaneError(t *testing.T) {
	t.Parallel()

	lookupErr := errors.New("domain not found")
	_, err := Get(&fakeControlPlane{xmlErr: lookupErr}, "missing")
	assert.ErrorIs(t, err, lookupErr)

	_, err = Get(&fakeControlPlane{xml: kvmDomain, infoErr: lookupErr}, "vm1")
	assert.ErrorIs(t, err, lookupErr)
}
