// Package ec2 contains the AWS::EC2 resource types emitted by the network
// construct.
//
// Fields typed as any accept literals or intrinsics:
//
//	var subnet = ec2.Subnet{
//		VpcId:            intrinsics.RefTo("DemoVpc"),
//		CidrBlock:        "10.1.0.0/24",
//		AvailabilityZone: intrinsics.AZ(0),
//	}
package ec2
